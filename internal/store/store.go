// Package store keeps live sessions and the bankrolls of known players.
package store

import (
	"errors"

	"github.com/calvinwijaya/blackjack-engine/internal/db"
	"github.com/calvinwijaya/blackjack-engine/internal/session"
	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerExists    = errors.New("player already exists")
)

// Store defines the interface for session storage
type Store interface {
	// SaveSession stores a session and records its player's bankroll
	SaveSession(s *session.Session) error

	// GetSession retrieves a session by ID
	GetSession(id string) (*session.Session, error)

	// DeleteSession removes a session from the store
	DeleteSession(id string) error

	// ListSessions returns all sessions ordered by ID
	ListSessions() ([]*session.Session, error)

	// CreatePlayer registers a new player with an opening balance
	CreatePlayer(id, name string, balance decimal.Decimal) (*db.Player, error)

	// GetPlayer returns the last recorded bankroll of a player
	GetPlayer(id string) (*db.Player, error)

	// TouchPlayer records that a known player came back
	TouchPlayer(id string) error
}
