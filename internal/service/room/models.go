package room

import (
	"encoding/json"
	"time"

	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/repository/room"
)

type Member struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsConnected bool   `json:"is_connected"`
}

// Event is both a history entry and the message pushed to members.
type Event struct {
	Type string          `json:"type"`
	Date time.Time       `json:"date"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Room is the public view of a room. It never carries the owner id or the
// provider token.
type Room struct {
	Id        string    `json:"id"`
	Members   []Member  `json:"members"`
	History   []Event   `json:"history"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomState struct {
	Room   Room            `json:"room"`
	Queue  provider.Queue  `json:"queue"`
	Player provider.Player `json:"player"`
}

func mapMember(m room.Member) Member {
	return Member{
		Id:          m.Id,
		DisplayName: m.DisplayName,
		IsConnected: m.IsConnected,
	}
}

func mapEvent(e room.Event) Event {
	return Event{
		Type: e.Type,
		Date: e.Date,
		Data: e.Data,
	}
}

func mapRoom(rm room.Room) Room {
	members := make([]Member, 0, len(rm.Members))
	for _, m := range rm.Members {
		members = append(members, mapMember(m))
	}

	history := make([]Event, 0, len(rm.History))
	for _, e := range rm.History {
		history = append(history, mapEvent(e))
	}

	return Room{
		Id:        rm.Id,
		Members:   members,
		History:   history,
		CreatedAt: rm.CreatedAt,
	}
}

func findMember(rm *room.Room, memberId string) (int, bool) {
	for i := range rm.Members {
		if rm.Members[i].Id == memberId {
			return i, true
		}
	}

	return -1, false
}

// HasConnectedMember reports whether anyone is still in the room.
func (r Room) HasConnectedMember() bool {
	for _, m := range r.Members {
		if m.IsConnected {
			return true
		}
	}

	return false
}
