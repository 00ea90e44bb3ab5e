package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/rest"
)

func (c controller) actionParams(r *http.Request) *room.ActionParams {
	return &room.ActionParams{
		RoomId:   c.getRoomIdFromCtx(r.Context()),
		MemberId: c.getMemberIdFromCtx(r.Context()),
	}
}

func (c controller) search(w http.ResponseWriter, r *http.Request) {
	tracks, err := c.roomService.Search(r.Context(), c.actionParams(r), r.URL.Query().Get("q"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"items": tracks})
}

type trackInput struct {
	ID         string   `json:"id" validate:"required"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists" validate:"omitempty,dive,required"`
	Image      string   `json:"image"`
	DurationMs int      `json:"duration_ms" validate:"gte=0"`
}

type addToQueueInput struct {
	Track trackInput `json:"track" validate:"required"`
}

func (c controller) addToQueue(w http.ResponseWriter, r *http.Request) {
	var input addToQueueInput
	if !c.readValid(w, r, &input) {
		return
	}

	queue, err := c.roomService.AddToQueue(r.Context(), &room.AddToQueueParams{
		ActionParams: *c.actionParams(r),
		Track:        provider.Track(input.Track),
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": queue})
}

type playbackAction func(context.Context, *room.ActionParams) (provider.Queue, error)

func (c controller) playback(action playbackAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queue, err := action(r.Context(), c.actionParams(r))
		if err != nil {
			c.writeError(w, r, err)
			return
		}

		rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": queue})
	}
}

func (c controller) skipNext(w http.ResponseWriter, r *http.Request) {
	c.playback(c.roomService.SkipNext)(w, r)
}

func (c controller) skipPrevious(w http.ResponseWriter, r *http.Request) {
	c.playback(c.roomService.SkipPrevious)(w, r)
}

func (c controller) play(w http.ResponseWriter, r *http.Request) {
	c.playback(c.roomService.Play)(w, r)
}

func (c controller) pause(w http.ResponseWriter, r *http.Request) {
	c.playback(c.roomService.Pause)(w, r)
}

func (c controller) getPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := c.roomService.GetPlaylists(r.Context(), c.actionParams(r))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"items": playlists})
}

func (c controller) getPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistId := r.URL.Query().Get("playlist-id")
	if playlistId == "" {
		c.writeError(w, r, fmt.Errorf("%w: playlist-id is required", ErrValidationError))
		return
	}

	playlist, err := c.roomService.GetPlaylist(r.Context(), c.actionParams(r), playlistId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	if playlist == nil {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "playlist not found"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": playlist})
}

func (c controller) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := c.roomService.GetUserProfile(r.Context(), c.actionParams(r))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": profile})
}
