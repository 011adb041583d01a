package game

import "slices"

const blackjackValue = 21

// Hand is one scored collection of cards tied to one bet. Totals are
// always derived from the cards, never stored.
type Hand struct {
	cards []Card
}

// NewHand returns a hand holding the given cards.
func NewHand(cards ...Card) *Hand {
	return &Hand{cards: slices.Clone(cards)}
}

// Add appends card to the hand.
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
}

// Len returns the number of cards in the hand.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the hand's cards in deal order.
func (h *Hand) Cards() []Card {
	return slices.Clone(h.cards)
}

func (h *Hand) card(i int) Card {
	return h.cards[i]
}

// removeAt takes the card at index i out of the hand.
func (h *Hand) removeAt(i int) Card {
	card := h.cards[i]
	h.cards = slices.Delete(h.cards, i, i+1)
	return card
}

// Totals returns every possible total in ascending order. Each ace adds
// one candidate total 10 above the previous one.
func (h *Hand) Totals() []int {
	totals, _ := handTotals(h.cards)
	return totals
}

// BestValue is the largest total not over 21, or the smallest total when
// every total busts.
func (h *Hand) BestValue() int {
	totals, minTotal := handTotals(h.cards)
	best := 0
	for _, total := range totals {
		if total <= blackjackValue && total > best {
			best = total
		}
	}
	if best == 0 {
		return minTotal
	}
	return best
}

// IsBust reports whether every total is over 21.
func (h *Hand) IsBust() bool {
	totals, _ := handTotals(h.cards)
	for _, total := range totals {
		if total <= blackjackValue {
			return false
		}
	}
	return true
}

// IsBlackjack reports whether the hand is two cards totalling 21.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.BestValue() == blackjackValue
}

// IsSoft reports whether an ace is currently counted as 11 without busting.
// A natural blackjack is classified as blackjack, never as soft.
func (h *Hand) IsSoft() bool {
	if h.IsBlackjack() {
		return false
	}
	totals, minTotal := handTotals(h.cards)
	for _, total := range totals {
		if total <= blackjackValue && total != minTotal {
			return true
		}
	}
	return false
}

func handTotals(cards []Card) ([]int, int) {
	base, aces := 0, 0
	for _, card := range cards {
		if card.IsAce() {
			aces++
			continue
		}
		base += card.BaseValue()
	}

	minTotal := base + aces
	totals := make([]int, 0, aces+1)
	for i := 0; i <= aces; i++ {
		totals = append(totals, minTotal+i*10)
	}
	return totals, minTotal
}
