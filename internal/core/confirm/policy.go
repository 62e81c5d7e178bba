// Package confirm gates BUY signals on historical head-to-head data.
package confirm

import (
	"context"

	"github.com/charleschow/tennis-trading/internal/core/market"
)

// Result is one oracle answer. Known is false when the provider is
// unreachable, a player can't be resolved, or the sample is too thin to
// matter — the policy treats all of those the same way.
type Result struct {
	WinPct  float64 // favorite's historical H2H win fraction, 0–1
	Matches int     // sample size behind WinPct
	Known   bool
}

func Unknown() Result { return Result{} }

// Oracle produces a head-to-head estimate for favorite vs underdog.
// Implementations must return Unknown() rather than an error for expected
// data gaps; errors are reserved for transport failures.
type Oracle interface {
	HeadToHead(ctx context.Context, favorite, underdog string, tier market.Tier) (Result, error)
}

// Policy converts an oracle result into a go / no-go. Unknown never
// confirms: a missing opinion rejects the trade.
type Policy struct {
	MinWinPct  float64 // e.g. 0.60
	MinMatches int     // e.g. 3
}

func (p Policy) Confirms(r Result) bool {
	if !r.Known {
		return false
	}
	if r.Matches < p.MinMatches {
		return false
	}
	return r.WinPct >= p.MinWinPct
}
