package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/ledger"
	"github.com/orbitdash/pokercore/internal/lobby"
	"github.com/orbitdash/pokercore/internal/table"
)

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("missing X-User-ID header")
)

// ErrorBody is the JSON body of every error response and websocket error
// message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// classify maps an error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, game.ErrIllegalAction):
		return http.StatusConflict, "illegal_action"
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient_funds"
	case errors.Is(err, game.ErrGameFull):
		return http.StatusConflict, "game_full"
	case errors.Is(err, game.ErrAlreadySeated):
		return http.StatusConflict, "already_seated"
	case errors.Is(err, game.ErrSeatInHand):
		return http.StatusConflict, "seat_in_hand"
	case errors.Is(err, game.ErrNotBusted):
		return http.StatusConflict, "not_busted"
	case errors.Is(err, lobby.ErrGameNotFound), errors.Is(err, table.ErrClosed):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, lobby.ErrNotSeated), errors.Is(err, game.ErrSeatNotFound):
		return http.StatusNotFound, "not_seated"
	case errors.Is(err, lobby.ErrInvalidBuyIn):
		return http.StatusBadRequest, "invalid_buy_in"
	case errors.Is(err, lobby.ErrInvalidGame):
		return http.StatusBadRequest, "invalid_game"
	}
	return http.StatusInternalServerError, "internal"
}

// errorBody returns the client-facing body for err. Internal errors are not
// echoed.
func errorBody(err error) (int, ErrorBody) {
	status, code := classify(err)
	msg := err.Error()
	var iae *game.IllegalActionError
	if errors.As(err, &iae) {
		msg = iae.Reason
	}
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	return status, ErrorBody{Code: code, Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status, body := errorBody(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	writeJSON(w, status, body)
}
