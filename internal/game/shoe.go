package game

import (
	"fmt"
	"slices"
)

// Shoe is the draw pile for one round. The top of the shoe is the end of
// the slice.
type Shoe struct {
	cards     []Card
	deckCount int
}

// NewShoe builds deckCount ordered copies of the 52-card deck.
func NewShoe(deckCount int) (*Shoe, error) {
	if deckCount < 1 {
		return nil, fmt.Errorf("%w: deck count must be at least 1, got %d", ErrInvalidSettings, deckCount)
	}

	return &Shoe{
		cards:     buildCards(deckCount),
		deckCount: deckCount,
	}, nil
}

// StackedShoe returns a shoe that deals exactly the given cards, in the
// order given.
func StackedShoe(cards ...Card) *Shoe {
	stacked := slices.Clone(cards)
	slices.Reverse(stacked)
	return &Shoe{cards: stacked}
}

func buildCards(deckCount int) []Card {
	cards := make([]Card, 0, deckCount*52)
	for range deckCount {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, Card{Suit: suit, Rank: rank})
			}
		}
	}
	return cards
}

// Shuffle permutes the shoe in place with Fisher-Yates.
func (s *Shoe) Shuffle(r Randomness) {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := r.Next(0, i+1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the top card.
func (s *Shoe) Draw() (Card, error) {
	n := len(s.cards)
	if n == 0 {
		return Card{}, ErrEmptyShoe
	}

	card := s.cards[n-1]
	s.cards = s.cards[:n-1]
	return card, nil
}

// Reset restores the full ordered shoe. Stacked shoes reset to empty.
func (s *Shoe) Reset() {
	s.cards = buildCards(s.deckCount)
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// DeckCount returns the number of decks the shoe was built from.
func (s *Shoe) DeckCount() int {
	return s.deckCount
}

// Cards returns a copy of the remaining cards, bottom first.
func (s *Shoe) Cards() []Card {
	return slices.Clone(s.cards)
}
