package api

import (
	"errors"
	"net/http"

	"github.com/calvinwijaya/blackjack-engine/internal/db"
	"github.com/calvinwijaya/blackjack-engine/internal/game"
	"github.com/calvinwijaya/blackjack-engine/internal/session"
	"github.com/calvinwijaya/blackjack-engine/internal/store"
)

var errInvalidRequest = errors.New("invalid request body")

type errorKind struct {
	err    error
	status int
	code   string
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{store.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{db.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
	{store.ErrPlayerExists, http.StatusConflict, "player_exists"},
	{errInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{session.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
	{session.ErrRoundInProgress, http.StatusConflict, "round_in_progress"},
	{session.ErrNoActiveRound, http.StatusConflict, "no_active_round"},
	{game.ErrInvalidTurnState, http.StatusConflict, "invalid_turn_state"},
	{game.ErrPlayerTurnActive, http.StatusConflict, "player_turn_active"},
	{game.ErrInvalidBet, http.StatusBadRequest, "invalid_bet"},
	{game.ErrInvalidPlayerName, http.StatusBadRequest, "invalid_player_name"},
	{game.ErrInvalidSettings, http.StatusBadRequest, "invalid_settings"},
	{game.ErrHandLocked, http.StatusBadRequest, "hand_locked"},
	{game.ErrSplitNotAvailable, http.StatusBadRequest, "split_not_available"},
	{game.ErrDoubleNotAvailable, http.StatusBadRequest, "double_not_available"},
	{game.ErrUnknownAction, http.StatusBadRequest, "unknown_action"},
	{game.ErrEmptyShoe, http.StatusInternalServerError, "empty_shoe"},
}

// statusFor maps an error onto an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "internal"
}
