package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testBet = decimal.NewFromInt(10)

func cardsOf(ranks ...Rank) []Card {
	suits := Suits
	cards := make([]Card, len(ranks))
	for i, r := range ranks {
		cards[i] = Card{Suit: suits[i%len(suits)], Rank: r}
	}
	return cards
}

func handOf(ranks ...Rank) *Hand {
	return NewHand(cardsOf(ranks...)...)
}

// dealStacked deals a round whose cards come off the shoe in the order
// given: player, dealer, player, dealer, then every later draw.
func dealStacked(t *testing.T, settings Settings, ranks ...Rank) *RoundState {
	t.Helper()
	state, err := DealRound(settings, StackedShoe(cardsOf(ranks...)...), "Tester", testBet)
	require.NoError(t, err)
	return state
}

func requireInvariants(t *testing.T, state *RoundState) {
	t.Helper()
	require.Len(t, state.HandBets(), state.Player().HandCount(), "one bet per hand")
	require.False(t, state.IsPlayerTurn() && state.IsRoundOver(), "player turn during a finished round")
}

// recordingRandomness returns min and records every maxExclusive it sees.
type recordingRandomness struct {
	bounds []int
}

func (r *recordingRandomness) Next(minInclusive, maxExclusive int) int {
	r.bounds = append(r.bounds, maxExclusive)
	return minInclusive
}
