package game

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RoundState is the aggregate for one round: the shoe, both players, the
// rules, the bets and the turn bookkeeping. It has exactly one owner and is
// mutated only by the engine transitions in this package.
type RoundState struct {
	shoe     *Shoe
	player   *Player
	dealer   *Player
	settings Settings

	baseBet  decimal.Decimal
	handBets []decimal.Decimal
	locked   map[int]struct{}

	playerTurn bool
	roundOver  bool
}

func newRoundState(shoe *Shoe, player, dealer *Player, settings Settings, bet decimal.Decimal) *RoundState {
	return &RoundState{
		shoe:       shoe,
		player:     player,
		dealer:     dealer,
		settings:   settings,
		baseBet:    bet,
		handBets:   []decimal.Decimal{bet},
		locked:     make(map[int]struct{}),
		playerTurn: true,
	}
}

// Shoe returns the shoe the round is dealt from.
func (s *RoundState) Shoe() *Shoe {
	return s.shoe
}

// Player returns the player.
func (s *RoundState) Player() *Player {
	return s.player
}

// Dealer returns the dealer.
func (s *RoundState) Dealer() *Player {
	return s.dealer
}

// Settings returns the rules fixed for this round.
func (s *RoundState) Settings() Settings {
	return s.settings
}

// IsPlayerTurn reports whether the round is waiting on the player.
func (s *RoundState) IsPlayerTurn() bool {
	return s.playerTurn
}

// IsRoundOver reports whether the round has been resolved.
func (s *RoundState) IsRoundOver() bool {
	return s.roundOver
}

// BaseBet returns the bet placed when the round started.
func (s *RoundState) BaseBet() decimal.Decimal {
	return s.baseBet
}

// HandBet returns the bet on hand i.
func (s *RoundState) HandBet(i int) decimal.Decimal {
	return s.handBets[i]
}

// HandBets returns a copy of the per-hand bets, indexed like Player().Hands().
func (s *RoundState) HandBets() []decimal.Decimal {
	return slices.Clone(s.handBets)
}

// TotalBet is the sum of every hand's bet.
func (s *RoundState) TotalBet() decimal.Decimal {
	return decimal.Sum(decimal.Zero, s.handBets...)
}

// IsHandLocked reports whether hand i was locked by an ace split.
func (s *RoundState) IsHandLocked(i int) bool {
	_, ok := s.locked[i]
	return ok
}

// LockedHands returns the locked hand indices in ascending order.
func (s *RoundState) LockedHands() []int {
	indices := make([]int, 0, len(s.locked))
	for i := range s.locked {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices
}

func (s *RoundState) lockHand(i int) {
	s.locked[i] = struct{}{}
}

func (s *RoundState) endPlayerTurn() {
	s.playerTurn = false
}

// advance moves to the next player hand, or ends the player's turn after
// the last one.
func (s *RoundState) advance() {
	if s.player.HasNextHand() {
		// HasNextHand guarantees success.
		_ = s.player.AdvanceToNextHand()
		return
	}
	s.endPlayerTurn()
}
