// Package provider describes the external playback service a room drives.
package provider

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/provider.go -package=mock . Provider

const TypeSpotify = "SPOTIFY"

// Token is the credential a room holds for its playback account.
// A zero ExpiresAt never expires.
type Token struct {
	Type          string    `json:"type"`
	Authorization string    `json:"authorization"`
	ExpiresAt     time.Time `json:"expires_at"`
	RefreshToken  string    `json:"refresh_token"`
}

func (t Token) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}

	return !now.Before(t.ExpiresAt)
}

type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Image      string   `json:"image"`
	DurationMs int      `json:"duration_ms"`
}

type Queue struct {
	CurrentlyPlaying *Track  `json:"currently_playing"`
	Queue            []Track `json:"queue"`
}

// SongID returns the id of the current track, or "" when nothing plays.
func (q Queue) SongID() string {
	if q.CurrentlyPlaying == nil {
		return ""
	}

	return q.CurrentlyPlaying.ID
}

type Player struct {
	IsPlaying  bool   `json:"is_playing"`
	DeviceName string `json:"device_name"`
}

type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	IsPublic    bool    `json:"is_public"`
	Tracks      []Track `json:"tracks,omitempty"`
}

type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsPremium   bool   `json:"is_premium"`
}

// Provider is implemented once per playback service. Every call that
// acts on the account takes the current authorization header value.
// Empty successful responses yield zero values, not errors.
type Provider interface {
	GetQueue(ctx context.Context, authorization string) (Queue, error)
	GetPlayer(ctx context.Context, authorization string) (Player, error)
	Play(ctx context.Context, authorization string) (Queue, error)
	Pause(ctx context.Context, authorization string) (Queue, error)
	SkipNext(ctx context.Context, authorization string) (Queue, error)
	SkipPrevious(ctx context.Context, authorization string) (Queue, error)
	AddToQueue(ctx context.Context, authorization string, trackID string) (Queue, error)
	Search(ctx context.Context, authorization string, query string) ([]Track, error)
	GetPlaylists(ctx context.Context, authorization string) ([]Playlist, error)
	GetPlaylist(ctx context.Context, authorization string, playlistID string) (*Playlist, error)
	GetUserProfile(ctx context.Context, authorization string) (*UserProfile, error)
	RefreshToken(ctx context.Context, old Token) (Token, error)
}
