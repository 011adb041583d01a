package session

import "errors"

var (
	ErrNoActiveRound     = errors.New("no active round")
	ErrRoundInProgress   = errors.New("round in progress")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
