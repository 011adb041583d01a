package store

import (
	"errors"
	"fmt"

	"github.com/calvinwijaya/blackjack-engine/internal/db"
	"github.com/calvinwijaya/blackjack-engine/internal/session"
	"github.com/shopspring/decimal"
)

// DatabaseStore keeps sessions in memory and writes every saved player
// bankroll through to the database.
type DatabaseStore struct {
	*MemoryStore
	db *db.Database
}

func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		MemoryStore: NewMemoryStore(),
		db:          database,
	}
}

// SaveSession updates the stored balance, inserting the player on its
// first save.
func (s *DatabaseStore) SaveSession(sess *session.Session) error {
	if id := sess.PlayerID(); id != "" {
		err := s.db.UpdatePlayerBalance(id, sess.Bankroll())
		if errors.Is(err, db.ErrPlayerNotFound) {
			err = s.db.SavePlayer(id, sess.PlayerName(), sess.Bankroll())
		}
		if err != nil {
			return err
		}
	}
	return s.MemoryStore.SaveSession(sess)
}

func (s *DatabaseStore) CreatePlayer(id, name string, balance decimal.Decimal) (*db.Player, error) {
	if _, err := s.db.GetPlayerByID(id); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlayerExists, id)
	} else if !errors.Is(err, db.ErrPlayerNotFound) {
		return nil, err
	}

	if err := s.db.CreatePlayer(id, name, balance); err != nil {
		return nil, err
	}
	return s.db.GetPlayerByID(id)
}

// GetPlayer reads from the database, so bankrolls survive restarts.
func (s *DatabaseStore) GetPlayer(id string) (*db.Player, error) {
	return s.db.GetPlayerByID(id)
}

func (s *DatabaseStore) TouchPlayer(id string) error {
	return s.db.UpdatePlayerLastLogin(id)
}
