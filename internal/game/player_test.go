package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerHandTraversal(t *testing.T) {
	t.Parallel()

	p := NewPlayer("Tester")
	require.Equal(t, 1, p.HandCount())
	assert.Zero(t, p.ActiveHand().Len())
	assert.False(t, p.HasNextHand())
	require.ErrorIs(t, p.AdvanceToNextHand(), ErrNoNextHand)

	p.AddHand(handOf(Eight))
	p.AddHand(handOf(Nine))
	require.NoError(t, p.AdvanceToNextHand())
	assert.Equal(t, 1, p.ActiveHandIndex())
	require.NoError(t, p.AdvanceToNextHand())
	assert.Equal(t, Nine, p.ActiveHand().Cards()[0].Rank)
	require.ErrorIs(t, p.AdvanceToNextHand(), ErrNoNextHand)

	p.StartNewRound()
	assert.Equal(t, 1, p.HandCount())
	assert.Zero(t, p.ActiveHandIndex())
}

func TestDealerShouldStand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		hand          *Hand
		standOnSoft17 bool
		want          bool
	}{
		{"hard 16 hits", handOf(Ten, Six), true, false},
		{"hard 17 stands", handOf(Ten, Seven), false, true},
		{"soft 17 stands when configured", handOf(Ace, Six), true, true},
		{"soft 17 hits when configured", handOf(Ace, Six), false, false},
		{"soft 18 stands", handOf(Ace, Seven), false, true},
		{"three card soft 17 hits", handOf(Ace, Three, Three), false, false},
		{"bust stands", handOf(Ten, Six, King), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DealerShouldStand(tt.hand, tt.standOnSoft17))
		})
	}
}
