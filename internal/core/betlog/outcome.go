// Package betlog tracks manual picks through their two-phase life:
// a snapshot at track time, then a single outcome update after the match.
package betlog

import "github.com/shopspring/decimal"

// Winner is which side of the tracked match won.
type Winner string

const (
	WinnerFavorite Winner = "fav_won"
	WinnerUnderdog Winner = "fav_lost"
)

// Outcome holds the fields derived from the manually entered results.
type Outcome struct {
	Filled    bool            `json:"order_filled"`
	FillCents int             `json:"fill_price,omitempty"` // target price when filled
	EdgeCents int             `json:"edge"`                 // lowest − target; negative means it dipped below
	PnL       decimal.Decimal `json:"pnl"`                  // dollars, 2 decimals
}

// Derive computes the outcome fields from the two manual inputs plus the
// contract count. Pure: same tuple in, same outcome out.
//
// A resting buy limit at target fills iff the market ever traded at or
// below it. A filled contract costs fillCents and pays $1 when the
// favorite wins, zero when she loses; an unfilled order is flat.
func Derive(targetCents, lowestCents int, winner Winner, contracts int) Outcome {
	out := Outcome{
		Filled:    lowestCents <= targetCents,
		EdgeCents: lowestCents - targetCents,
		PnL:       decimal.Zero.Round(2),
	}
	if !out.Filled {
		return out
	}
	out.FillCents = targetCents
	if contracts == 0 {
		return out
	}
	n := decimal.NewFromInt(int64(contracts))
	hundred := decimal.NewFromInt(100)
	if winner == WinnerFavorite {
		payout := decimal.NewFromInt(int64(100 - out.FillCents))
		out.PnL = payout.Mul(n).Div(hundred).Round(2)
	} else {
		cost := decimal.NewFromInt(int64(out.FillCents))
		out.PnL = cost.Mul(n).Div(hundred).Neg().Round(2)
	}
	return out
}
