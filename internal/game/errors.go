package game

import "errors"

var (
	// Construction-time validation.
	ErrInvalidSettings   = errors.New("invalid settings")
	ErrInvalidPlayerName = errors.New("player name is required")
	ErrInvalidBet        = errors.New("invalid bet")

	// Action eligibility.
	ErrInvalidTurnState   = errors.New("not the player's turn")
	ErrHandLocked         = errors.New("active hand is locked")
	ErrSplitNotAvailable  = errors.New("split is not available")
	ErrDoubleNotAvailable = errors.New("double down is not available")
	ErrUnknownAction      = errors.New("unknown action")

	ErrPlayerTurnActive = errors.New("player turn is still active")
	ErrNoNextHand       = errors.New("no more hands")

	// ErrEmptyShoe is fatal for the round that hit it.
	ErrEmptyShoe = errors.New("shoe is empty")
)
