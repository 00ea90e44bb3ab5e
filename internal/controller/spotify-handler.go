package controller

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sharetube/jamroom/pkg/rest"
)

// spotifyLogin returns the page the browser is sent to for consent.
func (c controller) spotifyLogin(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"url": c.accounts.AuthorizationURL(uuid.NewString())})
}

type accessTokenInput struct {
	Code string `json:"code" validate:"required"`
}

// spotifyAccessToken completes the authorization code flow and returns the
// token a room is created with.
func (c controller) spotifyAccessToken(w http.ResponseWriter, r *http.Request) {
	var input accessTokenInput
	if !c.readValid(w, r, &input) {
		return
	}

	creds, err := c.accounts.ExchangeCode(r.Context(), input.Code)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": map[string]any{
		"token": creds.Token(),
	}})
}
