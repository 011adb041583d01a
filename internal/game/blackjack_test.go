package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRoundDealsTwoCardsEach(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.DeckCount = 1

	state, err := StartRound(settings, NewRandomness(42), "  Tester  ", testBet)
	require.NoError(t, err)

	assert.Equal(t, "Tester", state.Player().Name)
	assert.Equal(t, 2, state.Player().ActiveHand().Len())
	assert.Equal(t, 2, state.Dealer().ActiveHand().Len())
	assert.Equal(t, 48, state.Shoe().Remaining())
	assert.Equal(t, !state.IsRoundOver(), state.IsPlayerTurn())
	assert.True(t, testBet.Equal(state.BaseBet()))
	requireInvariants(t, state)
}

func TestStartRoundValidation(t *testing.T) {
	t.Parallel()

	noDecks := DefaultSettings()
	noDecks.DeckCount = 0

	tests := []struct {
		name     string
		settings Settings
		player   string
		bet      decimal.Decimal
		want     error
	}{
		{"no decks", noDecks, "Tester", testBet, ErrInvalidSettings},
		{"blank name", DefaultSettings(), "   ", testBet, ErrInvalidPlayerName},
		{"below min", DefaultSettings(), "Tester", decimal.NewFromFloat(0.5), ErrInvalidBet},
		{"above max", DefaultSettings(), "Tester", decimal.NewFromInt(501), ErrInvalidBet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := StartRound(tt.settings, NewRandomness(1), tt.player, tt.bet)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStartRoundAcceptsLimits(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	for _, bet := range []decimal.Decimal{settings.MinBet, settings.MaxBet} {
		_, err := StartRound(settings, NewRandomness(3), "Tester", bet)
		require.NoError(t, err)
	}
}

func TestDealOrderAlternates(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Two, Three, Four, Five)

	assert.Equal(t, []Card{cardsOf(Two, Three, Four, Five)[0], cardsOf(Two, Three, Four, Five)[2]}, state.Player().ActiveHand().Cards())
	assert.Equal(t, []Card{cardsOf(Two, Three, Four, Five)[1], cardsOf(Two, Three, Four, Five)[3]}, state.Dealer().ActiveHand().Cards())
}

func TestNaturalBlackjackEndsRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		deal       []Rank
		outcome    Outcome
		multiplier decimal.Decimal
	}{
		{"player natural", []Rank{Ace, Four, King, Five}, PlayerWin, decimal.NewFromFloat(1.5)},
		{"dealer natural", []Rank{Ten, Ace, Nine, King}, DealerWin, decimal.NewFromInt(-1)},
		{"both natural", []Rank{Ace, Ace, Queen, Jack}, Push, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state := dealStacked(t, DefaultSettings(), tt.deal...)
			assert.False(t, state.IsPlayerTurn())
			assert.True(t, state.IsRoundOver())

			require.ErrorIs(t, Hit(state), ErrInvalidTurnState)
			require.ErrorIs(t, Stand(state), ErrInvalidTurnState)

			result, err := Resolve(state)
			require.NoError(t, err)
			require.Len(t, result.Hands, 1)
			assert.Equal(t, tt.outcome, result.Hands[0].Outcome)
			assert.True(t, tt.multiplier.Equal(result.Hands[0].PayoutMultiplier))
			assert.Equal(t, 2, state.Dealer().ActiveHand().Len(), "dealer does not draw after a natural")
		})
	}
}

func TestStandThenDealerBusts(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Ten, Seven, Nine, Nine, King)
	require.NoError(t, Stand(state))
	assert.False(t, state.IsPlayerTurn())

	result, err := Resolve(state)
	require.NoError(t, err)
	require.Len(t, result.Hands, 1)

	hr := result.Hands[0]
	assert.Equal(t, 19, hr.PlayerValue)
	assert.Equal(t, 26, hr.DealerValue)
	assert.True(t, hr.DealerBust)
	assert.Equal(t, PlayerWin, hr.Outcome)
	assert.True(t, decimal.NewFromInt(1).Equal(hr.PayoutMultiplier))
	assert.True(t, state.IsRoundOver())
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Ten, Seven, Nine, Nine, King, Two)
	require.NoError(t, Stand(state))

	first, err := Resolve(state)
	require.NoError(t, err)
	second, err := Resolve(state)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, state.Shoe().Remaining())
}

func TestResolveDuringPlayerTurn(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Ten, Seven, Nine, Nine)
	_, err := Resolve(state)
	require.ErrorIs(t, err, ErrPlayerTurnActive)
}

func TestDealerHitsSoft17WhenConfigured(t *testing.T) {
	t.Parallel()

	h17 := DefaultSettings()
	h17.StandOnSoft17 = false

	state := dealStacked(t, h17, Ten, Ace, Eight, Six, Five, Ten)
	require.NoError(t, Stand(state))
	result, err := Resolve(state)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Dealer().ActiveHand().Len())
	assert.True(t, result.Hands[0].DealerBust)

	s17 := dealStacked(t, DefaultSettings(), Ten, Ace, Eight, Six, Five, Ten)
	require.NoError(t, Stand(s17))
	result, err = Resolve(s17)
	require.NoError(t, err)
	assert.Equal(t, 2, s17.Dealer().ActiveHand().Len())
	assert.Equal(t, PlayerWin, result.Hands[0].Outcome)
}

func TestHit(t *testing.T) {
	t.Parallel()

	t.Run("keeps turn below 21", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Two, Ten, Three, Seven, Four)
		require.NoError(t, Hit(state))
		assert.Equal(t, 3, state.Player().ActiveHand().Len())
		assert.True(t, state.IsPlayerTurn())
		requireInvariants(t, state)
	})

	t.Run("bust ends turn", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Ten, Ten, Six, Seven, King)
		require.NoError(t, Hit(state))
		assert.True(t, state.Player().ActiveHand().IsBust())
		assert.False(t, state.IsPlayerTurn())
		requireInvariants(t, state)

		result, err := Resolve(state)
		require.NoError(t, err)
		assert.Equal(t, DealerWin, result.Hands[0].Outcome)
	})

	t.Run("empty shoe", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Two, Ten, Three, Seven)
		require.ErrorIs(t, Hit(state), ErrEmptyShoe)
	})
}

func TestDealRoundEmptyShoe(t *testing.T) {
	t.Parallel()

	_, err := DealRound(DefaultSettings(), StackedShoe(cardsOf(Two, Three, Four)...), "Tester", testBet)
	require.ErrorIs(t, err, ErrEmptyShoe)
}

func TestDoubleDown(t *testing.T) {
	t.Parallel()

	t.Run("draws one card and doubles the bet", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Five, Ten, Six, Seven, King)
		require.True(t, CanDoubleDown(state))
		require.NoError(t, DoubleDown(state))

		hand := state.Player().ActiveHand()
		assert.Equal(t, 3, hand.Len())
		assert.Equal(t, 21, hand.BestValue())
		assert.True(t, decimal.NewFromInt(20).Equal(state.HandBet(0)))
		assert.False(t, state.IsPlayerTurn())
		requireInvariants(t, state)

		result, err := Resolve(state)
		require.NoError(t, err)
		assert.Equal(t, PlayerWin, result.Hands[0].Outcome)
		assert.True(t, decimal.NewFromInt(20).Equal(result.Net(state.HandBets())))
	})

	t.Run("advances even when the card is poor", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Five, Ten, Six, Seven, Two)
		require.NoError(t, DoubleDown(state))
		assert.Equal(t, 13, state.Player().Hand(0).BestValue())
		assert.False(t, state.IsPlayerTurn())
	})

	t.Run("needs exactly two cards", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Two, Ten, Three, Seven, Four)
		require.NoError(t, Hit(state))
		assert.False(t, CanDoubleDown(state))
		require.ErrorIs(t, DoubleDown(state), ErrDoubleNotAvailable)
		assert.True(t, testBet.Equal(state.HandBet(0)))
	})
}

func TestSplitPair(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Eight, Ten, Eight, Seven, Three, Two)
	require.True(t, CanSplit(state))
	require.NoError(t, Split(state))

	require.Equal(t, 2, state.Player().HandCount())
	assert.Equal(t, []Rank{Eight, Three}, ranksOf(state.Player().Hand(0)))
	assert.Equal(t, []Rank{Eight, Two}, ranksOf(state.Player().Hand(1)))
	assert.Zero(t, state.Player().ActiveHandIndex())
	assert.True(t, state.IsPlayerTurn())
	assert.Empty(t, state.LockedHands())
	assert.True(t, decimal.NewFromInt(20).Equal(state.TotalBet()))
	requireInvariants(t, state)

	require.NoError(t, Stand(state))
	assert.Equal(t, 1, state.Player().ActiveHandIndex())
	assert.True(t, state.IsPlayerTurn())

	require.NoError(t, Stand(state))
	assert.False(t, state.IsPlayerTurn())

	result, err := Resolve(state)
	require.NoError(t, err)
	require.Len(t, result.Hands, 2)
	assert.Equal(t, 0, result.Hands[0].HandIndex)
	assert.Equal(t, 1, result.Hands[1].HandIndex)
}

func TestSplitBustOnFirstHandMovesToSecond(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Eight, Ten, Eight, Seven, Six, Two, King)
	require.NoError(t, Split(state))
	require.NoError(t, Hit(state))

	assert.True(t, state.Player().Hand(0).IsBust())
	assert.Equal(t, 1, state.Player().ActiveHandIndex())
	assert.True(t, state.IsPlayerTurn())
	requireInvariants(t, state)
}

func TestSplitEligibility(t *testing.T) {
	t.Parallel()

	noTens := DefaultSettings()
	noTens.AllowTenValueSplit = false
	twoHands := DefaultSettings()
	twoHands.MaxHands = 2

	t.Run("not a pair", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Eight, Ten, Nine, Seven)
		assert.False(t, CanSplit(state))
		require.ErrorIs(t, Split(state), ErrSplitNotAvailable)
		assert.Equal(t, 1, state.Player().HandCount())
	})

	t.Run("ten values allowed", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), King, Ten, Queen, Seven, Two, Three)
		require.NoError(t, Split(state))
		assert.Equal(t, 2, state.Player().HandCount())
	})

	t.Run("ten values refused", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, noTens, King, Ten, Queen, Seven)
		require.ErrorIs(t, Split(state), ErrSplitNotAvailable)
	})

	t.Run("same rank tens without ten value rule", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, noTens, King, Ten, King, Seven, Two, Three)
		require.NoError(t, Split(state))
	})

	t.Run("max hands", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, twoHands, Eight, Ten, Eight, Seven, Eight, Two)
		require.NoError(t, Split(state))
		assert.Equal(t, []Rank{Eight, Eight}, ranksOf(state.Player().Hand(0)))
		require.ErrorIs(t, Split(state), ErrSplitNotAvailable)
	})

	t.Run("after hit", func(t *testing.T) {
		t.Parallel()
		state := dealStacked(t, DefaultSettings(), Two, Ten, Two, Seven, Three)
		require.NoError(t, Hit(state))
		require.ErrorIs(t, Split(state), ErrSplitNotAvailable)
	})
}

func TestSplitAcesOneCardNoResplit(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.RestrictSplitAcesToOneCard = true
	settings.AllowResplitAces = false

	state := dealStacked(t, settings, Ace, Ten, Ace, Seven, Five, Six)
	require.NoError(t, Split(state))

	assert.False(t, state.IsPlayerTurn())
	assert.False(t, state.IsRoundOver())
	assert.Equal(t, []int{0, 1}, state.LockedHands())
	assert.True(t, state.IsHandLocked(0))
	assert.True(t, state.IsHandLocked(1))
	requireInvariants(t, state)

	result, err := Resolve(state)
	require.NoError(t, err)
	require.Len(t, result.Hands, 2)
	assert.Equal(t, DealerWin, result.Hands[0].Outcome)
	assert.Equal(t, Push, result.Hands[1].Outcome)
}

func TestSplitAcesLockedHands(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.RestrictSplitAcesToOneCard = true
	settings.AllowResplitAces = true
	settings.AllowDoubleDownAfterSplitAces = false

	state := dealStacked(t, settings, Ace, Ten, Ace, Seven, Ace, Nine, Two, Three)
	require.NoError(t, Split(state))
	assert.True(t, state.IsPlayerTurn())
	assert.Equal(t, []int{0, 1}, state.LockedHands())

	require.ErrorIs(t, Hit(state), ErrHandLocked)
	require.ErrorIs(t, DoubleDown(state), ErrDoubleNotAvailable)

	// Hand 0 holds two aces again and may be resplit.
	require.True(t, CanSplit(state))
	require.NoError(t, Split(state))
	assert.Equal(t, 3, state.Player().HandCount())
	assert.Equal(t, []int{0, 1, 2}, state.LockedHands())
	assert.Equal(t, []Rank{Ace, Two}, ranksOf(state.Player().Hand(0)))
	assert.Equal(t, []Rank{Ace, Three}, ranksOf(state.Player().Hand(2)))
	requireInvariants(t, state)

	// Hand 1 is locked and not an ace pair.
	require.NoError(t, Stand(state))
	assert.False(t, CanSplit(state))
	require.ErrorIs(t, Hit(state), ErrHandLocked)
}

func TestDoubleAfterSplitAces(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.RestrictSplitAcesToOneCard = true
	settings.AllowResplitAces = true
	settings.AllowDoubleDownAfterSplitAces = true

	state := dealStacked(t, settings, Ace, Ten, Ace, Seven, Five, Six, Nine)
	require.NoError(t, Split(state))
	require.True(t, state.IsHandLocked(0))

	require.True(t, CanDoubleDown(state))
	require.NoError(t, DoubleDown(state))
	assert.Equal(t, 3, state.Player().Hand(0).Len())
	assert.True(t, decimal.NewFromInt(20).Equal(state.HandBet(0)))
	assert.True(t, testBet.Equal(state.HandBet(1)))
	assert.Equal(t, 1, state.Player().ActiveHandIndex())

	// Doubling is allowed on locked hands; hitting never is.
	require.ErrorIs(t, Hit(state), ErrHandLocked)
}

func TestSplitAcesWithoutRestriction(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.RestrictSplitAcesToOneCard = false

	state := dealStacked(t, settings, Ace, Ten, Ace, Seven, Five, Six, Two)
	require.NoError(t, Split(state))
	assert.Empty(t, state.LockedHands())
	require.NoError(t, Hit(state))
	assert.Equal(t, 3, state.Player().Hand(0).Len())
}

func TestApply(t *testing.T) {
	t.Parallel()

	state := dealStacked(t, DefaultSettings(), Two, Ten, Three, Seven, Four)
	require.NoError(t, Apply(state, ActionHit))
	require.ErrorIs(t, Apply(state, Action("surrender")), ErrUnknownAction)
	require.NoError(t, Apply(state, ActionStand))
	assert.False(t, state.IsPlayerTurn())
	assert.False(t, CanAct(state))
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Action{
		"hit":        ActionHit,
		" Stand ":    ActionStand,
		"double":     ActionDoubleDown,
		"doubleDown": ActionDoubleDown,
		"split":      ActionSplit,
	} {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseAction("insurance")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	t.Parallel()

	actions := []Action{ActionHit, ActionStand, ActionDoubleDown, ActionSplit}
	settings := DefaultSettings()
	settings.DeckCount = 2

	for seed := int64(1); seed <= 200; seed++ {
		rng := NewRandomness(seed)
		state, err := StartRound(settings, rng, "Tester", testBet)
		require.NoError(t, err)
		requireInvariants(t, state)

		for step := 0; CanAct(state); step++ {
			action := actions[rng.Next(0, len(actions))]
			if step > 50 {
				action = ActionStand
			}
			_ = Apply(state, action)
			requireInvariants(t, state)
		}

		result, err := Resolve(state)
		require.NoError(t, err)
		require.True(t, state.IsRoundOver())
		require.Len(t, result.Hands, state.Player().HandCount())
		for i, hr := range result.Hands {
			require.Equal(t, i, hr.HandIndex)
		}
		for _, i := range state.LockedHands() {
			require.Less(t, i, state.Player().HandCount())
		}
	}
}

func ranksOf(h *Hand) []Rank {
	cards := h.Cards()
	ranks := make([]Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	return ranks
}
