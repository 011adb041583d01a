package game

import "github.com/shopspring/decimal"

type Outcome string

const (
	PlayerWin Outcome = "playerWin"
	DealerWin Outcome = "dealerWin"
	Push      Outcome = "push"
)

var (
	blackjackPayout = decimal.NewFromFloat(1.5)
	winPayout       = decimal.NewFromInt(1)
	pushPayout      = decimal.Zero
	lossPayout      = decimal.NewFromInt(-1)
)

// HandResult is the settled outcome of one player hand.
type HandResult struct {
	HandIndex        int             `json:"handIndex"`
	PlayerValue      int             `json:"playerValue"`
	DealerValue      int             `json:"dealerValue"`
	Outcome          Outcome         `json:"outcome"`
	PlayerBlackjack  bool            `json:"playerBlackjack"`
	DealerBlackjack  bool            `json:"dealerBlackjack"`
	PlayerBust       bool            `json:"playerBust"`
	DealerBust       bool            `json:"dealerBust"`
	PayoutMultiplier decimal.Decimal `json:"payoutMultiplier"`
}

// RoundResult holds one HandResult per player hand, in hand order.
type RoundResult struct {
	Hands []HandResult `json:"hands"`
}

// Net is the bankroll change for the round: each hand's multiplier applied
// to that hand's bet. Results without a matching bet are skipped.
func (r RoundResult) Net(bets []decimal.Decimal) decimal.Decimal {
	net := decimal.Zero
	for _, hr := range r.Hands {
		if hr.HandIndex < 0 || hr.HandIndex >= len(bets) {
			continue
		}
		net = net.Add(hr.PayoutMultiplier.Mul(bets[hr.HandIndex]))
	}
	return net
}

// Evaluate compares every player hand against the dealer's final hand.
func Evaluate(state *RoundState) RoundResult {
	dealer := state.dealer.ActiveHand()
	hands := state.player.Hands()

	results := make([]HandResult, 0, len(hands))
	for i, hand := range hands {
		results = append(results, EvaluateHand(hand, dealer, i))
	}
	return RoundResult{Hands: results}
}

// EvaluateHand settles one player hand. Blackjack checks come before bust
// checks, so a natural is never decided by the dealer's draw.
func EvaluateHand(player, dealer *Hand, index int) HandResult {
	result := HandResult{
		HandIndex:       index,
		PlayerValue:     player.BestValue(),
		DealerValue:     dealer.BestValue(),
		PlayerBlackjack: player.IsBlackjack(),
		DealerBlackjack: dealer.IsBlackjack(),
		PlayerBust:      player.IsBust(),
		DealerBust:      dealer.IsBust(),
	}

	result.Outcome = outcome(result)
	result.PayoutMultiplier = payout(result)
	return result
}

func outcome(r HandResult) Outcome {
	switch {
	case r.PlayerBlackjack && r.DealerBlackjack:
		return Push
	case r.PlayerBlackjack:
		return PlayerWin
	case r.DealerBlackjack:
		return DealerWin
	case r.PlayerBust:
		return DealerWin
	case r.DealerBust:
		return PlayerWin
	case r.PlayerValue > r.DealerValue:
		return PlayerWin
	case r.PlayerValue < r.DealerValue:
		return DealerWin
	default:
		return Push
	}
}

func payout(r HandResult) decimal.Decimal {
	switch r.Outcome {
	case PlayerWin:
		if r.PlayerBlackjack {
			return blackjackPayout
		}
		return winPayout
	case DealerWin:
		return lossPayout
	default:
		return pushPayout
	}
}
