package room

import (
	"encoding/json"
	"time"
)

type Member struct {
	Id          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsConnected bool   `json:"is_connected"`
}

type Event struct {
	Date time.Time       `json:"date"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Token struct {
	Type          string    `json:"type"`
	Authorization string    `json:"authorization"`
	ExpiresAt     time.Time `json:"expires_at"`
	RefreshToken  string    `json:"refresh_token"`
}

// Room is the document stored under room:{id}. Version grows by one on
// every write.
type Room struct {
	Id        string    `json:"id"`
	OwnerId   string    `json:"owner_id"`
	Members   []Member  `json:"members"`
	History   []Event   `json:"history"`
	Token     Token     `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	Version   int64     `json:"version"`
}

// UpdateFunc mutates a freshly read room inside an atomic update.
// Returning an error aborts the update without writing.
type UpdateFunc func(r *Room) error
