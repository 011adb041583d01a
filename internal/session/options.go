package session

import (
	"github.com/calvinwijaya/blackjack-engine/internal/game"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
)

// Option configures a Session.
type Option func(*Session)

// ShoeBuilder returns the shoe a new round is dealt from.
type ShoeBuilder func(settings game.Settings, rng game.Randomness) (*game.Shoe, error)

// WithBankroll overrides the starting balance from the settings, e.g. with
// a balance restored from storage.
func WithBankroll(bankroll decimal.Decimal) Option {
	return func(s *Session) {
		s.bankroll = bankroll
	}
}

func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithPlayerID ties the session to a stored player.
func WithPlayerID(playerID string) Option {
	return func(s *Session) {
		s.playerID = playerID
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithClock(clock quartz.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

func WithShoeBuilder(builder ShoeBuilder) Option {
	return func(s *Session) {
		s.newShoe = builder
	}
}

// ShuffledShoe builds a fresh shoe for the settings and shuffles it.
func ShuffledShoe(settings game.Settings, rng game.Randomness) (*game.Shoe, error) {
	shoe, err := game.NewShoe(settings.DeckCount)
	if err != nil {
		return nil, err
	}
	shoe.Shuffle(rng)
	return shoe, nil
}
