package controller

import (
	"errors"
	"net/http"

	"github.com/sharetube/jamroom/internal/provider"
	"github.com/sharetube/jamroom/internal/service/room"
	"github.com/sharetube/jamroom/pkg/rest"
)

var ErrValidationError = errors.New("validation error")

func errorStatus(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrInvalidToken), errors.Is(err, provider.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, room.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, provider.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, ErrValidationError):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
		message = http.StatusText(status)
	} else {
		c.logger.InfoContext(r.Context(), "request failed", "status", status, "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": message})
}
