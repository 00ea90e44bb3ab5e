package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/rest"
)

type tokenInput struct {
	Type          string    `json:"type" validate:"required,oneof=SPOTIFY"`
	Authorization string    `json:"authorization" validate:"required"`
	ExpiresAt     time.Time `json:"expires_at"`
	RefreshToken  string    `json:"refresh_token" validate:"required"`
}

type createRoomInput struct {
	Token tokenInput `json:"token" validate:"required"`
}

type createRoomOutput struct {
	Room        room.Room `json:"room"`
	MemberId    string    `json:"member_id"`
	AccessToken string    `json:"access_token"`
}

// readValid decodes the body into dst and validates it. It writes the error
// response itself and reports whether the handler may go on.
func (c controller) readValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := rest.ReadJSON(r, dst); err != nil {
		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return false
	}

	if validationErrors, ok := c.validate.Validate(dst); !ok {
		c.logger.InfoContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return false
	}

	return true
}

// createRoom stores a room for the given provider token and joins its owner.
func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if !c.readValid(w, r, &input) {
		return
	}

	createRoomResp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Token: provider.Token(input.Token),
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	joinRoomResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId:   createRoomResp.Room.Id,
		MemberId: createRoomResp.OwnerId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createRoomOutput{
		Room:        joinRoomResp.Room,
		MemberId:    createRoomResp.OwnerId,
		AccessToken: createRoomResp.AccessToken,
	}})
}

type getRoomOutput struct {
	room.RoomState
	MemberId    string `json:"member_id"`
	AccessToken string `json:"access_token"`
}

// getRoom returns the room with what currently plays, and a new identity
// the caller can join with.
func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	state, err := c.roomService.GetRoomState(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	access, err := c.roomService.IssueAccess(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": getRoomOutput{
		RoomState:   state,
		MemberId:    access.MemberId,
		AccessToken: access.AccessToken,
	}})
}

type joinRoomInput struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=32"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	var input joinRoomInput
	if err := rest.ReadJSON(r, &input); err != nil && !errors.Is(err, rest.ErrEmptyBody) {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	joinRoomResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId:      c.getRoomIdFromCtx(r.Context()),
		MemberId:    c.getMemberIdFromCtx(r.Context()),
		DisplayName: input.DisplayName,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": map[string]any{
		"room":   joinRoomResp.Room,
		"member": joinRoomResp.JoinedMember,
	}})
}

func (c controller) leaveRoom(w http.ResponseWriter, r *http.Request) {
	if err := c.roomService.LeaveRoom(r.Context(), &room.LeaveRoomParams{
		RoomId:   c.getRoomIdFromCtx(r.Context()),
		MemberId: c.getMemberIdFromCtx(r.Context()),
	}); err != nil {
		c.writeError(w, r, fmt.Errorf("failed to leave room: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
