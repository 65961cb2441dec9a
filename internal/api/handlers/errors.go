// Package handlers implements the REST endpoints of the duel server.
package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/spellduel/internal/api/response"
	"github.com/ramonehamilton/spellduel/internal/match"
	"github.com/ramonehamilton/spellduel/internal/storage"
)

// errInvalidDeck marks deck lists that break the construction rules.
var errInvalidDeck = errors.New("invalid deck")

// writeError maps service errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, err)
	case errors.Is(err, errInvalidDeck),
		errors.Is(err, match.ErrInvalidRequest),
		errors.Is(err, match.ErrNotParticipant):
		response.BadRequest(w, err)
	case errors.Is(err, match.ErrMatchFinished):
		response.Conflict(w, err)
	default:
		response.InternalError(w, err)
	}
}
