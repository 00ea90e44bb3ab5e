package spotify

import (
	"github.com/sharetube/jamroom/internal/provider"
)

type image struct {
	URL string `json:"url"`
}

type artist struct {
	Name string `json:"name"`
}

type trackObject struct {
	URI        string   `json:"uri"`
	IsPlayable *bool    `json:"is_playable"`
	Name       string   `json:"name"`
	Artists    []artist `json:"artists"`
	Album      struct {
		Images []image `json:"images"`
	} `json:"album"`
	DurationMs int `json:"duration_ms"`
}

type queueResponse struct {
	CurrentlyPlaying *trackObject  `json:"currently_playing"`
	Queue            []trackObject `json:"queue"`
}

type playerResponse struct {
	IsPlaying bool `json:"is_playing"`
	Device    struct {
		Name string `json:"name"`
	} `json:"device"`
}

type searchResponse struct {
	Tracks struct {
		Total int           `json:"total"`
		Items []trackObject `json:"items"`
	} `json:"tracks"`
}

type playlistObject struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Images      []image `json:"images"`
	Public      bool    `json:"public"`
	Tracks      struct {
		Items []struct {
			Track *trackObject `json:"track"`
		} `json:"items"`
	} `json:"tracks"`
}

type playlistsResponse struct {
	Items []playlistObject `json:"items"`
}

type profileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Product     string `json:"product"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func firstImage(images []image) string {
	if len(images) == 0 {
		return ""
	}

	return images[0].URL
}

func (t trackObject) toTrack() provider.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return provider.Track{
		ID:         t.URI,
		Name:       t.Name,
		Artists:    artists,
		Image:      firstImage(t.Album.Images),
		DurationMs: t.DurationMs,
	}
}

func (t trackObject) playable() bool {
	return t.IsPlayable == nil || *t.IsPlayable
}

func (q queueResponse) toQueue() provider.Queue {
	queue := provider.Queue{Queue: make([]provider.Track, 0, len(q.Queue))}
	for _, item := range q.Queue {
		queue.Queue = append(queue.Queue, item.toTrack())
	}

	if q.CurrentlyPlaying != nil {
		track := q.CurrentlyPlaying.toTrack()
		queue.CurrentlyPlaying = &track
	}

	return queue
}

func (p playlistObject) toPlaylist() provider.Playlist {
	playlist := provider.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       firstImage(p.Images),
		IsPublic:    p.Public,
	}

	for _, item := range p.Tracks.Items {
		if item.Track == nil {
			continue
		}
		playlist.Tracks = append(playlist.Tracks, item.Track.toTrack())
	}

	return playlist
}
