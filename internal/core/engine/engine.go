// Package engine implements the factor pricing model.
//
//	TARGET = favorite_probability × factor
//	factor = base + tier adjustment + surface adjustment (+ ranking-gap tier)
//
// TARGET is the limit price (fraction of the $1 payout) to rest on the
// book. Matches passing all filters produce BUY; everything here is pure —
// no I/O, no clock, no state.
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/charleschow/tennis-trading/internal/core/market"
)

type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalWait Signal = "WAIT"
	SignalSkip Signal = "SKIP"
)

// Mode selects how a non-filtered match turns into a signal. Exactly one
// mode is active per deployment; they are not interchangeable.
type Mode string

const (
	// ModeLimit: every match passing the filters is a BUY resting at TARGET,
	// wherever the market currently trades.
	ModeLimit Mode = "limit"
	// ModeCross: BUY only when the market already trades at or below TARGET,
	// otherwise WAIT and re-evaluate next cycle.
	ModeCross Mode = "cross"
)

// Params is the tunable half of the model, loaded from pricing.yaml.
type Params struct {
	SignalMode Mode `yaml:"signal_mode"`

	BaseFactor float64                    `yaml:"base_factor"`
	TierAdj    map[market.Tier]float64    `yaml:"tier_adjustments"`
	SurfaceAdj map[market.Surface]float64 `yaml:"surface_adjustments"`

	MinFavoritePct float64 `yaml:"min_favorite_pct"`
	MaxFavoritePct float64 `yaml:"max_favorite_pct"`
	MinVolume      float64 `yaml:"min_volume_dollars"`

	// Ranking-gap variant. MaxRankingGap 0 disables the filter; the tier
	// adjustments apply whenever both rankings are known.
	MaxRankingGap int     `yaml:"max_ranking_gap"`
	GapSmallMax   int     `yaml:"gap_small_max"`
	GapLargeMin   int     `yaml:"gap_large_min"`
	GapAdjSmall   float64 `yaml:"gap_adj_small"`
	GapAdjMedium  float64 `yaml:"gap_adj_medium"`
	GapAdjLarge   float64 `yaml:"gap_adj_large"`
}

// Defaults mirrors the tuning the model went live with.
func Defaults() Params {
	return Params{
		SignalMode: ModeLimit,
		BaseFactor: 0.70,
		TierAdj: map[market.Tier]float64{
			market.TierTour:      0.00,
			market.TierSecondary: 0.00,
			market.TierLower:     -0.05,
			market.TierMajor:     0.05,
		},
		SurfaceAdj: map[market.Surface]float64{
			market.SurfaceHard:  0.00,
			market.SurfaceClay:  -0.02,
			market.SurfaceGrass: 0.03,
		},
		MinFavoritePct: 0.70,
		MaxFavoritePct: 0.92,
		MinVolume:      100,
		GapSmallMax:    10,
		GapLargeMin:    40,
	}
}

// Decision is the engine's verdict on one snapshot. TargetPrice, Factor and
// Edge are meaningful only when Signal != SKIP.
type Decision struct {
	Match       market.Snapshot `json:"match"`
	Signal      Signal          `json:"signal"`
	TargetPrice float64         `json:"target_price,omitempty"` // fraction of payout
	Factor      float64         `json:"factor,omitempty"`
	Edge        float64         `json:"edge,omitempty"` // market fraction − target, negative is favorable
	SkipReason  string          `json:"skip_reason,omitempty"`
}

func skip(m market.Snapshot, reason string) Decision {
	return Decision{Match: m, Signal: SignalSkip, SkipReason: reason}
}

// Evaluate runs the filters and, if none trips, prices the match.
func Evaluate(m market.Snapshot, p Params) Decision {
	if m.Tier == market.TierMajor {
		return skip(m, "Grand Slam — not traded")
	}
	if m.FavProbability < p.MinFavoritePct {
		return skip(m, fmt.Sprintf("Favorite %.0f%% < %.0f%% minimum",
			m.FavProbability*100, p.MinFavoritePct*100))
	}
	if m.FavProbability > p.MaxFavoritePct {
		return skip(m, fmt.Sprintf("Favorite %.0f%% > %.0f%% maximum",
			m.FavProbability*100, p.MaxFavoritePct*100))
	}
	gap, gapKnown := m.RankingGap()
	if p.MaxRankingGap > 0 && gapKnown && gap > p.MaxRankingGap {
		return skip(m, fmt.Sprintf("Ranking gap %d > %d maximum", gap, p.MaxRankingGap))
	}
	if m.VolumeDollars < p.MinVolume {
		return skip(m, fmt.Sprintf("Volume $%.0f < $%.0f minimum", m.VolumeDollars, p.MinVolume))
	}

	// Only the factor is rounded; the target keeps full precision and is
	// snapped to a whole cent at order time.
	factor := Factor(m, p)
	target := m.FavProbability * factor
	edge := float64(m.MarketCents)/100.0 - target

	sig := SignalBuy
	if p.SignalMode == ModeCross && float64(m.MarketCents)/100.0 > target {
		sig = SignalWait
	}

	return Decision{
		Match:       m,
		Signal:      sig,
		TargetPrice: target,
		Factor:      factor,
		Edge:        edge,
	}
}

// Factor computes the multiplier, rounded to 2 decimals before use.
func Factor(m market.Snapshot, p Params) float64 {
	f := p.BaseFactor
	f += p.TierAdj[m.Tier]
	f += p.SurfaceAdj[m.Surface]
	if gap, known := m.RankingGap(); known {
		switch {
		case gap <= p.GapSmallMax:
			f += p.GapAdjSmall
		case gap >= p.GapLargeMin:
			f += p.GapAdjLarge
		default:
			f += p.GapAdjMedium
		}
	}
	return round2(f)
}

// EvaluateAll prices a batch and orders it for action: BUY before WAIT
// before SKIP, BUYs by tightest edge first. The loop acts on every BUY
// regardless, so the order only drives logs and the dashboard.
func EvaluateAll(snapshots []market.Snapshot, p Params) []Decision {
	decisions := make([]Decision, 0, len(snapshots))
	for _, m := range snapshots {
		decisions = append(decisions, Evaluate(m, p))
	}

	rank := map[Signal]int{SignalBuy: 0, SignalWait: 1, SignalSkip: 2}
	sort.SliceStable(decisions, func(i, j int) bool {
		a, b := decisions[i], decisions[j]
		if rank[a.Signal] != rank[b.Signal] {
			return rank[a.Signal] < rank[b.Signal]
		}
		return sortEdge(a) < sortEdge(b)
	})
	return decisions
}

func sortEdge(d Decision) float64 {
	if d.Signal == SignalSkip {
		return math.MaxFloat64
	}
	return d.Edge
}

// TargetCents converts the fractional target to an order price in cents.
func (d Decision) TargetCents() int {
	return int(math.Round(d.TargetPrice * 100))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
