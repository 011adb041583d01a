package game

// Player owns one or more hands and points at the one being played. The
// dealer is a Player too; its drawing policy is DealerShouldStand.
type Player struct {
	Name            string
	hands           []*Hand
	activeHandIndex int
}

// NewPlayer returns a player holding one empty hand.
func NewPlayer(name string) *Player {
	p := &Player{Name: name}
	p.StartNewRound()
	return p
}

// StartNewRound discards all hands and starts over with one empty hand.
func (p *Player) StartNewRound() {
	p.hands = []*Hand{NewHand()}
	p.activeHandIndex = 0
}

// Hands returns the player's hands in play order.
func (p *Player) Hands() []*Hand {
	return p.hands
}

// Hand returns the hand at index i.
func (p *Player) Hand(i int) *Hand {
	return p.hands[i]
}

// HandCount returns how many hands the player holds.
func (p *Player) HandCount() int {
	return len(p.hands)
}

// ActiveHandIndex returns the index of the hand being played.
func (p *Player) ActiveHandIndex() int {
	return p.activeHandIndex
}

// ActiveHand returns the hand being played.
func (p *Player) ActiveHand() *Hand {
	return p.hands[p.activeHandIndex]
}

// AddHand appends h after the existing hands.
func (p *Player) AddHand(h *Hand) {
	p.hands = append(p.hands, h)
}

// HasNextHand reports whether a hand remains after the active one.
func (p *Player) HasNextHand() bool {
	return p.activeHandIndex+1 < len(p.hands)
}

// AdvanceToNextHand moves the active pointer one hand to the right.
func (p *Player) AdvanceToNextHand() error {
	if !p.HasNextHand() {
		return ErrNoNextHand
	}
	p.activeHandIndex++
	return nil
}

// DealerShouldStand is the dealer's drawing policy: stand above 17, hit
// below it, and on 17 hit only a soft hand when standOnSoft17 is off.
func DealerShouldStand(h *Hand, standOnSoft17 bool) bool {
	value := h.BestValue()
	if value > 17 {
		return true
	}
	if value < 17 {
		return false
	}
	return standOnSoft17 || !h.IsSoft()
}
