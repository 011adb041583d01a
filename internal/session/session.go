// Package session hosts blackjack rounds for one player: it owns the
// bankroll, checks bets against it, and settles each resolved round.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-engine/internal/game"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	statusIdle          = "Select 'New round' to start."
	statusStarted       = "New round started."
	statusDoubled       = "Double down resolved."
	statusSplit         = "Split completed."
	statusComplete      = "Round complete."
	statusBlackjack     = "Blackjack!"
	statusBlackjackPush = "Blackjack push."
	statusAborted       = "Round aborted. Select 'New round' to start."
)

// Session serializes every action against its round, so one Session may be
// shared by concurrent callers.
type Session struct {
	mu sync.Mutex

	id         string
	playerID   string
	playerName string

	settings game.Settings
	rng      game.Randomness
	newShoe  ShoeBuilder

	bankroll   decimal.Decimal
	round      *game.RoundState
	lastResult *game.RoundResult
	status     string

	clock     quartz.Clock
	logger    *log.Logger
	createdAt time.Time
	updatedAt time.Time
}

// New creates a session with the settings' starting balance. A nil rng
// falls back to a clock-seeded source.
func New(playerName string, settings game.Settings, rng game.Randomness, opts ...Option) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, game.ErrInvalidPlayerName
	}

	if rng == nil {
		rng = game.NewClockSeededRandomness()
	}

	s := &Session{
		playerName: name,
		settings:   settings,
		rng:        rng,
		newShoe:    ShuffledShoe,
		bankroll:   settings.StartingBalance,
		status:     statusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.id == "" {
		s.id = uuid.New().String()
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("session").With("session", s.id, "player", s.playerName)

	s.createdAt = s.clock.Now()
	s.updatedAt = s.createdAt
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) PlayerID() string {
	return s.playerID
}

func (s *Session) PlayerName() string {
	return s.playerName
}

func (s *Session) Bankroll() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bankroll
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Settings() game.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// LastResult returns the most recently settled round, if any.
func (s *Session) LastResult() (game.RoundResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return game.RoundResult{}, false
	}
	return *s.lastResult, true
}

// UpdateSettings replaces the rules used from the next round on.
func (s *Session) UpdateSettings(settings game.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveRound() {
		return ErrRoundInProgress
	}
	s.settings = settings
	s.touch()
	return nil
}

// StartRound checks bet against the table limits and the bankroll, then
// deals. A natural on either side settles immediately.
func (s *Session) StartRound(bet decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.liveRound() {
		return ErrRoundInProgress
	}
	if err := s.settings.ValidateBet(bet); err != nil {
		return err
	}
	if bet.GreaterThan(s.bankroll) {
		return fmt.Errorf("%w: bet %s exceeds balance %s", ErrInsufficientFunds, bet, s.bankroll)
	}

	shoe, err := s.newShoe(s.settings, s.rng)
	if err != nil {
		return err
	}
	round, err := game.DealRound(s.settings, shoe, s.playerName, bet)
	if err != nil {
		return err
	}

	s.round = round
	s.lastResult = nil
	s.status = statusStarted
	s.touch()
	s.logger.Info("Round started", "bet", bet, "bankroll", s.bankroll)

	if round.IsRoundOver() {
		return s.resolve()
	}
	return nil
}

func (s *Session) Hit() error {
	return s.Apply(game.ActionHit)
}

func (s *Session) Stand() error {
	return s.Apply(game.ActionStand)
}

func (s *Session) DoubleDown() error {
	return s.Apply(game.ActionDoubleDown)
}

func (s *Session) Split() error {
	return s.Apply(game.ActionSplit)
}

// Apply performs one player action. Doubling and splitting first check that
// the bankroll covers the extra bet. When the action ends the player's turn
// the dealer plays and the round is settled.
func (s *Session) Apply(action game.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveRound() {
		return ErrNoActiveRound
	}

	if action == game.ActionDoubleDown || action == game.ActionSplit {
		if !s.canCoverActiveHand() {
			return fmt.Errorf("%w: %s needs another %s", ErrInsufficientFunds, action, s.activeHandBet())
		}
	}

	if err := game.Apply(s.round, action); err != nil {
		s.logger.Debug("Action rejected", "action", action, "error", err)
		return err
	}

	switch action {
	case game.ActionDoubleDown:
		s.status = statusDoubled
	case game.ActionSplit:
		s.status = statusSplit
	}
	s.touch()
	s.logger.Debug("Action applied", "action", action, "hand", s.round.Player().ActiveHandIndex())

	if !s.round.IsRoundOver() && !s.round.IsPlayerTurn() {
		return s.resolve()
	}
	return nil
}

// CanSplit reports whether Split would currently succeed.
func (s *Session) CanSplit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canAct() && game.CanSplit(s.round) && s.canCoverActiveHand()
}

// CanDoubleDown reports whether DoubleDown would currently succeed.
func (s *Session) CanDoubleDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canAct() && game.CanDoubleDown(s.round) && s.canCoverActiveHand()
}

// DealerHoleCardHidden is true while the player is still deciding.
func (s *Session) DealerHoleCardHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holeCardHidden()
}

// DealerVisibleCards returns the dealer cards a player may see.
func (s *Session) DealerVisibleCards() []game.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dealerVisibleCards()
}

// DealerVisibleValue scores only the visible dealer cards.
func (s *Session) DealerVisibleValue() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return game.NewHand(s.dealerVisibleCards()...).BestValue()
}

// resolve settles the round. A failure abandons the round with no
// bankroll change so the next StartRound can proceed.
func (s *Session) resolve() error {
	result, err := game.Resolve(s.round)
	if err != nil {
		s.round = nil
		s.lastResult = nil
		s.status = statusAborted
		s.touch()
		s.logger.Error("Round aborted", "error", err, "bankroll", s.bankroll)
		return fmt.Errorf("resolving round: %w", err)
	}

	net := result.Net(s.round.HandBets())
	s.bankroll = s.bankroll.Add(net)
	s.lastResult = &result
	s.status = summarize(result)
	s.touch()
	s.logger.Info("Round settled", "hands", len(result.Hands), "net", net, "bankroll", s.bankroll)
	return nil
}

func (s *Session) liveRound() bool {
	return s.round != nil && !s.round.IsRoundOver()
}

func (s *Session) canAct() bool {
	return s.round != nil && game.CanAct(s.round)
}

func (s *Session) activeHandBet() decimal.Decimal {
	return s.round.HandBet(s.round.Player().ActiveHandIndex())
}

// canCoverActiveHand checks that everything already staked plus one more
// copy of the active hand's bet fits in the bankroll.
func (s *Session) canCoverActiveHand() bool {
	needed := s.round.TotalBet().Add(s.activeHandBet())
	return needed.LessThanOrEqual(s.bankroll)
}

func (s *Session) holeCardHidden() bool {
	return s.round != nil && s.round.IsPlayerTurn() && !s.round.IsRoundOver()
}

func (s *Session) dealerVisibleCards() []game.Card {
	if s.round == nil {
		return nil
	}
	cards := s.round.Dealer().ActiveHand().Cards()
	if s.holeCardHidden() && len(cards) > 1 {
		return cards[:1]
	}
	return cards
}

func (s *Session) touch() {
	s.updatedAt = s.clock.Now()
}

func summarize(result game.RoundResult) string {
	for _, hr := range result.Hands {
		if hr.PlayerBlackjack && hr.Outcome == game.PlayerWin {
			return statusBlackjack
		}
	}
	for _, hr := range result.Hands {
		if hr.PlayerBlackjack && hr.Outcome == game.Push {
			return statusBlackjackPush
		}
	}
	return statusComplete
}
