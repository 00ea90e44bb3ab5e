package room

import "github.com/sharetube/jamroom/internal/provider"

const (
	EventMemberJoined    = "MEMBER_JOINED"
	EventMemberLeaved    = "MEMBER_LEAVED"
	EventMusicAdded      = "MUSIC_ADDED"
	EventMusicSwitched   = "MUSIC_SWITCHED"
	EventMusicPlayed     = "MUSIC_PLAYED"
	EventMusicPaused     = "MUSIC_PAUSED"
	EventNewDevice       = "NEW_DEVICE"
	EventDisconnected    = "DISCONNECTED"
	EventHistoryModified = "HISTORY_MODIFIED"
	EventRoomState       = "ROOM_STATE"
)

type MemberEventData struct {
	Member Member `json:"member"`
}

type MusicAddedData struct {
	Track    provider.Track   `json:"track"`
	NewQueue []provider.Track `json:"new_queue"`
	By       *Member          `json:"by"`
}

// PlaybackData is carried by MUSIC_SWITCHED, MUSIC_PLAYED and MUSIC_PAUSED.
// By is nil when the change was observed on the device itself.
type PlaybackData struct {
	NewTrack *provider.Track  `json:"new_track"`
	NewQueue []provider.Track `json:"new_queue"`
	By       *Member          `json:"by,omitempty"`
}

type NewDeviceData struct {
	DeviceName string           `json:"device_name"`
	NewTrack   *provider.Track  `json:"new_track"`
	NewQueue   []provider.Track `json:"new_queue"`
}

type HistoryData struct {
	History []Event `json:"history"`
}

func PlaybackFromQueue(q provider.Queue, by *Member) PlaybackData {
	queue := q.Queue
	if queue == nil {
		queue = []provider.Track{}
	}

	return PlaybackData{
		NewTrack: q.CurrentlyPlaying,
		NewQueue: queue,
		By:       by,
	}
}
