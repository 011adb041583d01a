package store

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-engine/internal/db"
	"github.com/calvinwijaya/blackjack-engine/internal/session"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory implementation of session storage
type MemoryStore struct {
	sessions map[string]*session.Session
	players  map[string]db.Player
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session.Session),
		players:  make(map[string]db.Player),
	}
}

func (s *MemoryStore) SaveSession(sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID()] = sess

	if id := sess.PlayerID(); id != "" {
		now := time.Now().UTC()
		p, exists := s.players[id]
		if !exists {
			p = db.Player{ID: id, Name: sess.PlayerName(), CreatedAt: now}
		}
		p.Balance = sess.Bankroll()
		p.LastLogin = now
		s.players[id] = p
	}

	return nil
}

func (s *MemoryStore) GetSession(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) ListSessions() ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	slices.SortFunc(sessions, func(a, b *session.Session) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return sessions, nil
}

func (s *MemoryStore) GetPlayer(id string) (*db.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.players[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", db.ErrPlayerNotFound, id)
	}
	return &p, nil
}

func (s *MemoryStore) CreatePlayer(id, name string, balance decimal.Decimal) (*db.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrPlayerExists, id)
	}
	now := time.Now().UTC()
	p := db.Player{ID: id, Name: name, Balance: balance, CreatedAt: now, LastLogin: now}
	s.players[id] = p
	return &p, nil
}

func (s *MemoryStore) TouchPlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.players[id]
	if !exists {
		return fmt.Errorf("%w: %s", db.ErrPlayerNotFound, id)
	}
	p.LastLogin = time.Now().UTC()
	s.players[id] = p
	return nil
}
