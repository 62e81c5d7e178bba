package betlog

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// GroupStat is one bucket of completed bets.
type GroupStat struct {
	Label       string          `json:"label"`
	Count       int             `json:"count"`
	Filled      int             `json:"filled"`
	Won         int             `json:"won"`
	FillRatePct float64         `json:"fill_rate_pct"`
	WinRatePct  float64         `json:"win_rate_pct"`
	PnL         decimal.Decimal `json:"pnl"`
}

// Stats aggregates everything the dashboard shows about tracked bets.
type Stats struct {
	TotalTracked int             `json:"total_tracked"`
	Pending      int             `json:"pending"`
	Completed    int             `json:"completed"`
	Filled       int             `json:"filled"`
	NotFilled    int             `json:"not_filled"`
	Won          int             `json:"won"`
	Lost         int             `json:"lost"`
	FillRatePct  float64         `json:"fill_rate_pct"`
	WinRatePct   float64         `json:"win_rate_pct"`
	TotalPnL     decimal.Decimal `json:"total_pnl"`
	AvgEdgeCents float64         `json:"avg_edge_cents"`
	ByProbBucket []GroupStat     `json:"by_prob_bucket"`
	ByTier       []GroupStat     `json:"by_level"`
	BySurface    []GroupStat     `json:"by_surface"`
}

// probBuckets mirrors the tradable probability band: the engine filters
// below 70% and above 92%, so the edges land just outside both.
var probBuckets = [][2]int{{70, 75}, {75, 80}, {80, 85}, {85, 90}, {90, 93}}

// Stats computes aggregates over all completed bets, on demand.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	bets, err := s.All(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	return computeStats(bets), nil
}

func computeStats(bets []Bet) Stats {
	st := Stats{TotalTracked: len(bets), TotalPnL: decimal.Zero}

	var completed []Bet
	for _, b := range bets {
		if b.Status == StatusCompleted {
			completed = append(completed, b)
		} else {
			st.Pending++
		}
	}
	st.Completed = len(completed)
	if len(completed) == 0 {
		return st
	}

	var edgeSum int
	for _, b := range completed {
		edgeSum += b.Outcome.EdgeCents
		st.TotalPnL = st.TotalPnL.Add(b.Outcome.PnL)
		if !b.Outcome.Filled {
			st.NotFilled++
			continue
		}
		st.Filled++
		if b.Winner == WinnerFavorite {
			st.Won++
		} else {
			st.Lost++
		}
	}
	st.TotalPnL = st.TotalPnL.Round(2)
	st.FillRatePct = pct(st.Filled, st.Completed)
	st.WinRatePct = pct(st.Won, st.Filled)
	st.AvgEdgeCents = round1(float64(edgeSum) / float64(len(completed)))

	st.ByProbBucket = bucketByProb(completed)
	st.ByTier = groupBy(completed, func(b Bet) string { return string(b.Tier) })
	st.BySurface = groupBy(completed, func(b Bet) string { return string(b.Surface) })
	return st
}

func bucketByProb(bets []Bet) []GroupStat {
	var out []GroupStat
	for _, bucket := range probBuckets {
		lo, hi := bucket[0], bucket[1]
		var group []Bet
		for _, b := range bets {
			p := b.FavProb * 100
			if p >= float64(lo) && p < float64(hi) {
				group = append(group, b)
			}
		}
		if len(group) == 0 {
			continue
		}
		gs := summarize(group)
		gs.Label = fmt.Sprintf("%d-%d%%", lo, hi)
		out = append(out, gs)
	}
	return out
}

func groupBy(bets []Bet, key func(Bet) string) []GroupStat {
	groups := map[string][]Bet{}
	for _, b := range bets {
		k := key(b)
		if k == "" {
			k = "Unknown"
		}
		groups[k] = append(groups[k], b)
	}

	labels := make([]string, 0, len(groups))
	for k := range groups {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	out := make([]GroupStat, 0, len(labels))
	for _, label := range labels {
		gs := summarize(groups[label])
		gs.Label = label
		out = append(out, gs)
	}
	return out
}

func summarize(group []Bet) GroupStat {
	gs := GroupStat{Count: len(group), PnL: decimal.Zero}
	for _, b := range group {
		gs.PnL = gs.PnL.Add(b.Outcome.PnL)
		if b.Outcome.Filled {
			gs.Filled++
			if b.Winner == WinnerFavorite {
				gs.Won++
			}
		}
	}
	gs.PnL = gs.PnL.Round(2)
	gs.FillRatePct = pct(gs.Filled, gs.Count)
	gs.WinRatePct = pct(gs.Won, gs.Filled)
	return gs
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

func round1(x float64) float64 {
	if x < 0 {
		return float64(int(x*10-0.5)) / 10
	}
	return float64(int(x*10+0.5)) / 10
}
