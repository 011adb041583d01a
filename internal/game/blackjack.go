package game

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Action is a player decision.
type Action string

const (
	ActionHit        Action = "hit"
	ActionStand      Action = "stand"
	ActionDoubleDown Action = "doubleDown"
	ActionSplit      Action = "split"
)

// ParseAction maps a wire name to an Action. "double" is accepted as an
// alias for doubleDown.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit":
		return ActionHit, nil
	case "stand":
		return ActionStand, nil
	case "double", "doubledown", "double-down":
		return ActionDoubleDown, nil
	case "split":
		return ActionSplit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

const dealerName = "Dealer"

// StartRound builds and shuffles a fresh shoe, then deals a new round.
func StartRound(settings Settings, rng Randomness, playerName string, bet decimal.Decimal) (*RoundState, error) {
	if err := validateStart(settings, playerName, bet); err != nil {
		return nil, err
	}

	shoe, err := NewShoe(settings.DeckCount)
	if err != nil {
		return nil, err
	}
	shoe.Shuffle(rng)

	return DealRound(settings, shoe, playerName, bet)
}

// DealRound deals a new round from the given shoe: player, dealer, player,
// dealer. A natural blackjack on either side ends the round immediately.
func DealRound(settings Settings, shoe *Shoe, playerName string, bet decimal.Decimal) (*RoundState, error) {
	if err := validateStart(settings, playerName, bet); err != nil {
		return nil, err
	}

	player := NewPlayer(strings.TrimSpace(playerName))
	dealer := NewPlayer(dealerName)

	for range 2 {
		if err := drawInto(shoe, player.ActiveHand()); err != nil {
			return nil, err
		}
		if err := drawInto(shoe, dealer.ActiveHand()); err != nil {
			return nil, err
		}
	}

	state := newRoundState(shoe, player, dealer, settings, bet)
	if player.ActiveHand().IsBlackjack() || dealer.ActiveHand().IsBlackjack() {
		state.playerTurn = false
		state.roundOver = true
	}

	return state, nil
}

func validateStart(settings Settings, playerName string, bet decimal.Decimal) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(playerName) == "" {
		return ErrInvalidPlayerName
	}
	return settings.ValidateBet(bet)
}

// Apply performs one player action against state.
func Apply(state *RoundState, action Action) error {
	switch action {
	case ActionHit:
		return Hit(state)
	case ActionStand:
		return Stand(state)
	case ActionDoubleDown:
		return DoubleDown(state)
	case ActionSplit:
		return Split(state)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Hit draws one card into the active hand and moves on if it busts.
func Hit(state *RoundState) error {
	if err := ensurePlayerTurn(state); err != nil {
		return err
	}

	index := state.player.ActiveHandIndex()
	if state.IsHandLocked(index) {
		return fmt.Errorf("%w: hand %d", ErrHandLocked, index)
	}

	hand := state.player.ActiveHand()
	if err := drawInto(state.shoe, hand); err != nil {
		return err
	}

	if hand.IsBust() {
		state.advance()
	}
	return nil
}

// Stand finishes the active hand.
func Stand(state *RoundState) error {
	if err := ensurePlayerTurn(state); err != nil {
		return err
	}

	state.advance()
	return nil
}

// DoubleDown doubles the active hand's bet, draws exactly one card and
// finishes the hand whatever it drew.
func DoubleDown(state *RoundState) error {
	if err := ensurePlayerTurn(state); err != nil {
		return err
	}
	if !CanDoubleDown(state) {
		return fmt.Errorf("%w: hand %d", ErrDoubleNotAvailable, state.player.ActiveHandIndex())
	}

	index := state.player.ActiveHandIndex()
	state.handBets[index] = state.handBets[index].Mul(decimal.NewFromInt(2))

	if err := drawInto(state.shoe, state.player.ActiveHand()); err != nil {
		return err
	}

	state.advance()
	return nil
}

// Split moves the second card of the active pair into a new hand and deals
// one card to each. Splitting aces under the one-card rule locks both
// hands, and ends the turn outright when aces may not be resplit.
func Split(state *RoundState) error {
	if err := ensurePlayerTurn(state); err != nil {
		return err
	}
	if !CanSplit(state) {
		return fmt.Errorf("%w: hand %d", ErrSplitNotAvailable, state.player.ActiveHandIndex())
	}

	activeIndex := state.player.ActiveHandIndex()
	active := state.player.ActiveHand()
	aces := active.card(0).IsAce() && active.card(1).IsAce()

	split := NewHand(active.removeAt(1))
	state.player.AddHand(split)
	splitIndex := state.player.HandCount() - 1
	state.handBets = append(state.handBets, state.handBets[activeIndex])

	if err := drawInto(state.shoe, active); err != nil {
		return err
	}
	if err := drawInto(state.shoe, split); err != nil {
		return err
	}

	if aces && state.settings.RestrictSplitAcesToOneCard {
		state.lockHand(activeIndex)
		state.lockHand(splitIndex)

		if !state.settings.AllowResplitAces {
			state.endPlayerTurn()
		}
	}

	return nil
}

// CanSplit reports whether Split would succeed, without the turn check.
func CanSplit(state *RoundState) bool {
	if state.player.HandCount() >= state.settings.MaxHands {
		return false
	}

	hand := state.player.ActiveHand()
	if hand.Len() != 2 {
		return false
	}

	first, second := hand.card(0), hand.card(1)
	sameRank := first.Rank == second.Rank
	tenValuePair := state.settings.AllowTenValueSplit && first.BaseValue() == 10 && second.BaseValue() == 10
	if !sameRank && !tenValuePair {
		return false
	}

	if state.IsHandLocked(state.player.ActiveHandIndex()) {
		return state.settings.AllowResplitAces && first.IsAce() && second.IsAce()
	}
	return true
}

// CanDoubleDown reports whether DoubleDown would succeed, without the turn
// check. Locked hands may double only under the double-after-split-aces
// rule; they can never hit.
func CanDoubleDown(state *RoundState) bool {
	if state.player.ActiveHand().Len() != 2 {
		return false
	}
	if state.IsHandLocked(state.player.ActiveHandIndex()) {
		return state.settings.AllowDoubleDownAfterSplitAces
	}
	return true
}

// CanAct reports whether the round is waiting on a player decision.
func CanAct(state *RoundState) bool {
	return ensurePlayerTurn(state) == nil
}

// Resolve plays the dealer's hand if the round is still open, then
// evaluates every player hand against it.
func Resolve(state *RoundState) (RoundResult, error) {
	if state.playerTurn {
		return RoundResult{}, ErrPlayerTurnActive
	}

	if !state.roundOver {
		if err := playDealer(state); err != nil {
			return RoundResult{}, err
		}
		state.roundOver = true
	}

	return Evaluate(state), nil
}

func playDealer(state *RoundState) error {
	hand := state.dealer.ActiveHand()
	for !DealerShouldStand(hand, state.settings.StandOnSoft17) {
		if err := drawInto(state.shoe, hand); err != nil {
			return err
		}
	}
	return nil
}

func ensurePlayerTurn(state *RoundState) error {
	if state.roundOver {
		return fmt.Errorf("%w: round is already over", ErrInvalidTurnState)
	}
	if !state.playerTurn {
		return ErrInvalidTurnState
	}
	return nil
}

func drawInto(shoe *Shoe, hand *Hand) error {
	card, err := shoe.Draw()
	if err != nil {
		return err
	}
	hand.Add(card)
	return nil
}
