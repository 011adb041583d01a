package session

import (
	"time"

	"github.com/calvinwijaya/blackjack-engine/internal/game"
	"github.com/shopspring/decimal"
)

// View is a point-in-time copy of a session, safe to serialize. The
// dealer's hole card is left out while the player is still deciding.
type View struct {
	ID            string            `json:"id"`
	PlayerID      string            `json:"playerId,omitempty"`
	PlayerName    string            `json:"playerName"`
	Bankroll      decimal.Decimal   `json:"bankroll"`
	MinBet        decimal.Decimal   `json:"minBet"`
	MaxBet        decimal.Decimal   `json:"maxBet"`
	Status        string            `json:"status"`
	Round         *RoundView        `json:"round,omitempty"`
	LastResult    *game.RoundResult `json:"lastResult,omitempty"`
	CanAct        bool              `json:"canAct"`
	CanSplit      bool              `json:"canSplit"`
	CanDoubleDown bool              `json:"canDoubleDown"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type RoundView struct {
	PlayerHands          []HandView `json:"playerHands"`
	ActiveHandIndex      int        `json:"activeHandIndex"`
	Dealer               HandView   `json:"dealer"`
	DealerHoleCardHidden bool       `json:"dealerHoleCardHidden"`
	IsPlayerTurn         bool       `json:"isPlayerTurn"`
	IsRoundOver          bool       `json:"isRoundOver"`
	ShoeRemaining        int        `json:"shoeRemaining"`
}

type HandView struct {
	Cards     []game.Card     `json:"cards"`
	Value     int             `json:"value"`
	Soft      bool            `json:"soft"`
	Bust      bool            `json:"bust"`
	Blackjack bool            `json:"blackjack"`
	Locked    bool            `json:"locked,omitempty"`
	Bet       decimal.Decimal `json:"bet"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:         s.id,
		PlayerID:   s.playerID,
		PlayerName: s.playerName,
		Bankroll:   s.bankroll,
		MinBet:     s.settings.MinBet,
		MaxBet:     s.settings.MaxBet,
		Status:     s.status,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}

	if s.lastResult != nil {
		result := *s.lastResult
		v.LastResult = &result
	}

	if s.round == nil {
		return v
	}

	v.CanAct = s.canAct()
	v.CanSplit = v.CanAct && game.CanSplit(s.round) && s.canCoverActiveHand()
	v.CanDoubleDown = v.CanAct && game.CanDoubleDown(s.round) && s.canCoverActiveHand()

	hands := s.round.Player().Hands()
	rv := &RoundView{
		PlayerHands:          make([]HandView, len(hands)),
		ActiveHandIndex:      s.round.Player().ActiveHandIndex(),
		Dealer:               handView(game.NewHand(s.dealerVisibleCards()...)),
		DealerHoleCardHidden: s.holeCardHidden(),
		IsPlayerTurn:         s.round.IsPlayerTurn(),
		IsRoundOver:          s.round.IsRoundOver(),
		ShoeRemaining:        s.round.Shoe().Remaining(),
	}
	for i, h := range hands {
		hv := handView(h)
		hv.Locked = s.round.IsHandLocked(i)
		hv.Bet = s.round.HandBet(i)
		rv.PlayerHands[i] = hv
	}
	v.Round = rv
	return v
}

func handView(h *game.Hand) HandView {
	return HandView{
		Cards:     h.Cards(),
		Value:     h.BestValue(),
		Soft:      h.IsSoft(),
		Bust:      h.IsBust(),
		Blackjack: h.IsBlackjack(),
	}
}
