package game

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Settings is the house rule set and table limits for a round.
type Settings struct {
	DeckCount                     int             `json:"deckCount"`
	StandOnSoft17                 bool            `json:"standOnSoft17"`
	MaxHands                      int             `json:"maxHands"`
	AllowTenValueSplit            bool            `json:"allowTenValueSplit"`
	AllowResplitAces              bool            `json:"allowResplitAces"`
	RestrictSplitAcesToOneCard    bool            `json:"restrictSplitAcesToOneCard"`
	AllowDoubleDownAfterSplitAces bool            `json:"allowDoubleDownAfterSplitAces"`
	MinBet                        decimal.Decimal `json:"minBet"`
	MaxBet                        decimal.Decimal `json:"maxBet"`
	StartingBalance               decimal.Decimal `json:"startingBalance"`
}

// DefaultSettings returns a six-deck S17 table with 1-500 limits.
func DefaultSettings() Settings {
	return Settings{
		DeckCount:                     6,
		StandOnSoft17:                 true,
		MaxHands:                      4,
		AllowTenValueSplit:            true,
		AllowResplitAces:              true,
		RestrictSplitAcesToOneCard:    true,
		AllowDoubleDownAfterSplitAces: false,
		MinBet:                        decimal.NewFromInt(1),
		MaxBet:                        decimal.NewFromInt(500),
		StartingBalance:               decimal.NewFromInt(1000),
	}
}

// Validate checks that the rules and limits describe a playable table.
func (s Settings) Validate() error {
	if s.DeckCount < 1 {
		return fmt.Errorf("%w: deck count must be at least 1, got %d", ErrInvalidSettings, s.DeckCount)
	}
	if s.MaxHands < 1 {
		return fmt.Errorf("%w: max hands must be at least 1, got %d", ErrInvalidSettings, s.MaxHands)
	}
	if !s.MinBet.IsPositive() {
		return fmt.Errorf("%w: min bet must be positive, got %s", ErrInvalidSettings, s.MinBet)
	}
	if s.MaxBet.LessThan(s.MinBet) {
		return fmt.Errorf("%w: max bet %s is below min bet %s", ErrInvalidSettings, s.MaxBet, s.MinBet)
	}
	if s.StartingBalance.IsNegative() {
		return fmt.Errorf("%w: starting balance must not be negative, got %s", ErrInvalidSettings, s.StartingBalance)
	}
	return nil
}

// ValidateBet checks bet against the table limits.
func (s Settings) ValidateBet(bet decimal.Decimal) error {
	if bet.LessThan(s.MinBet) || bet.GreaterThan(s.MaxBet) {
		return fmt.Errorf("%w: bet must be between %s and %s, got %s", ErrInvalidBet, s.MinBet, s.MaxBet, bet)
	}
	return nil
}
