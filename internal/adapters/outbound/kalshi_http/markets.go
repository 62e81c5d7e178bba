package kalshi_http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/charleschow/tennis-trading/internal/config"
	"github.com/charleschow/tennis-trading/internal/core/market"
	"github.com/charleschow/tennis-trading/internal/telemetry"
)

// Tennis singles match series on Kalshi.
var defaultSeries = []seriesSpec{
	{ticker: "KXATPMATCH", tier: market.TierTour},
	{ticker: "KXWTAMATCH", tier: market.TierSecondary},
}

type seriesSpec struct {
	ticker string
	tier   market.Tier
}

// RankingSource resolves a player name to a world ranking, 0 when unknown.
type RankingSource interface {
	Ranking(name string) int
}

// MarketProvider turns open Kalshi tennis markets into normalized match
// snapshots. It satisfies automation.SnapshotProvider.
type MarketProvider struct {
	client   *Client
	pricing  config.Pricing
	rankings RankingSource // may be nil
	series   []seriesSpec
}

func NewMarketProvider(client *Client, pricing config.Pricing, rankings RankingSource) *MarketProvider {
	return &MarketProvider{
		client:   client,
		pricing:  pricing,
		rankings: rankings,
		series:   defaultSeries,
	}
}

type apiMarket struct {
	Ticker       string    `json:"ticker"`
	EventTicker  string    `json:"event_ticker"`
	Title        string    `json:"title"`
	YesSubTitle  string    `json:"yes_sub_title"`
	RulesPrimary string    `json:"rules_primary"`
	LastPrice    int       `json:"last_price"`
	YesBid       int       `json:"yes_bid"`
	YesAsk       int       `json:"yes_ask"`
	Volume       int       `json:"volume"` // contracts traded
	Status       string    `json:"status"`
	CloseTime    time.Time `json:"close_time"`
}

type marketsResponse struct {
	Markets []apiMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// FetchOpenMatches polls every configured series and returns one snapshot
// per match. One series failing does not sink the cycle: its markets are
// skipped with a warning and the rest still trade. An error is returned
// only when every series fails.
func (p *MarketProvider) FetchOpenMatches(ctx context.Context) ([]market.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var (
		snapshots []market.Snapshot
		failures  int
		lastErr   error
	)

	for _, s := range p.series {
		raw, err := p.fetchSeries(ctx, s.ticker)
		if err != nil {
			failures++
			lastErr = err
			telemetry.Warnf("kalshi: fetch series %s: %v", s.ticker, err)
			continue
		}
		snapshots = append(snapshots, p.snapshots(raw, s)...)
	}

	if failures == len(p.series) {
		return nil, fmt.Errorf("all %d series failed, last: %w", failures, lastErr)
	}
	return snapshots, nil
}

func (p *MarketProvider) fetchSeries(ctx context.Context, series string) ([]apiMarket, error) {
	var all []apiMarket
	cursor := ""
	for {
		q := url.Values{}
		q.Set("series_ticker", series)
		q.Set("status", "open")
		q.Set("limit", "200")
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		body, status, err := p.client.Get(ctx, "/trade-api/v2/markets?"+q.Encode())
		if err != nil {
			return nil, err
		}
		if status != 200 {
			return nil, fmt.Errorf("status=%d body=%s", status, string(body))
		}

		var resp marketsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal markets: %w", err)
		}
		all = append(all, resp.Markets...)

		if resp.Cursor == "" || len(resp.Markets) == 0 {
			return all, nil
		}
		cursor = resp.Cursor
	}
}

// snapshots collapses raw markets into one snapshot per event, always on
// the favorite's side. Each match event carries one market per player;
// the one whose YES trades at or above 50¢ is the favorite's. Markets we
// cannot price or whose title we cannot parse are dropped and counted.
func (p *MarketProvider) snapshots(raw []apiMarket, s seriesSpec) []market.Snapshot {
	byEvent := make(map[string][]apiMarket)
	order := make([]string, 0, len(raw))
	for _, m := range raw {
		if m.EventTicker == "" {
			continue
		}
		if _, seen := byEvent[m.EventTicker]; !seen {
			order = append(order, m.EventTicker)
		}
		byEvent[m.EventTicker] = append(byEvent[m.EventTicker], m)
	}

	var out []market.Snapshot
	for _, evt := range order {
		snap, ok := p.buildSnapshot(byEvent[evt], s)
		if !ok {
			telemetry.Metrics.ParseFailures.Inc()
			continue
		}
		out = append(out, snap)
	}
	return out
}

func (p *MarketProvider) buildSnapshot(group []apiMarket, s seriesSpec) (market.Snapshot, bool) {
	// Pick the favorite's side: the market with the highest priced YES.
	best, bestPrice := apiMarket{}, 0
	for _, m := range group {
		if price, ok := priceCents(m); ok && price > bestPrice {
			best, bestPrice = m, price
		}
	}
	if bestPrice < 50 {
		// No priced favorite; even a coin flip would fail the probability
		// floor downstream, so there is nothing to trade here.
		return market.Snapshot{}, false
	}

	favName := cleanName(best.YesSubTitle)
	a, b, ok := parsePlayers(best.Title)
	if !ok {
		// Some markets bury the matchup in the rules text instead.
		a, b, ok = parsePlayers(best.RulesPrimary)
	}
	if favName == "" {
		if !ok {
			return market.Snapshot{}, false
		}
		favName = a
	}
	dogName := opponentOf(favName, a, b, ok, group, best)
	if dogName == "" {
		return market.Snapshot{}, false
	}

	tournament, tier, surface := p.classify(best.Title, s)

	volume := 0
	for _, m := range group {
		volume += m.Volume
	}

	snap := market.Snapshot{
		Favorite:       market.PlayerRef{Name: favName},
		Underdog:       market.PlayerRef{Name: dogName},
		FavProbability: float64(bestPrice) / 100.0,
		MarketCents:    bestPrice,
		Tournament:     tournament,
		Tier:           tier,
		Surface:        surface,
		VolumeDollars:  float64(volume) * float64(bestPrice) / 100.0,
		Ticker:         best.Ticker,
		EventTicker:    best.EventTicker,
		CloseTime:      best.CloseTime,
	}
	if p.rankings != nil {
		snap.Favorite.Ranking = p.rankings.Ranking(favName)
		snap.Underdog.Ranking = p.rankings.Ranking(dogName)
	}
	return snap, true
}

// priceCents picks the most trustworthy YES price: last trade, then the
// bid/ask midpoint, then whichever single quote exists.
func priceCents(m apiMarket) (int, bool) {
	switch {
	case m.LastPrice >= 1 && m.LastPrice <= 99:
		return m.LastPrice, true
	case m.YesBid > 0 && m.YesAsk > 0:
		return (m.YesBid + m.YesAsk) / 2, true
	case m.YesAsk > 0:
		return m.YesAsk, true
	case m.YesBid > 0:
		return m.YesBid, true
	}
	return 0, false
}

var vsPattern = regexp.MustCompile(`(?i)^(.*?)\s+vs\.?\s+(.*?)$`)

// parsePlayers pulls "A vs B" out of a market title like
// "Pro Tennis: Sinner vs Monfils Winner?".
func parsePlayers(title string) (a, b string, ok bool) {
	t := title
	if i := strings.LastIndex(t, ":"); i >= 0 {
		t = t[i+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "?")
	t = strings.TrimSuffix(t, " Winner")
	t = strings.TrimSuffix(t, " winner")

	m := vsPattern.FindStringSubmatch(t)
	if m == nil {
		return "", "", false
	}
	a, b = cleanName(m[1]), cleanName(m[2])
	if a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// opponentOf finds the underdog's name: prefer the sibling market's
// subtitle, fall back to whichever title side isn't the favorite.
func opponentOf(fav, a, b string, parsed bool, group []apiMarket, best apiMarket) string {
	for _, m := range group {
		if m.Ticker == best.Ticker {
			continue
		}
		if name := cleanName(m.YesSubTitle); name != "" && !sameName(name, fav) {
			return name
		}
	}
	if !parsed {
		return ""
	}
	if sameName(a, fav) {
		return b
	}
	return a
}

func cleanName(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".")
}

// sameName matches loosely: Kalshi subtitles sometimes carry only the
// surname while titles carry the full name.
func sameName(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// classify resolves tournament metadata: the configured rule table first,
// then keyword heuristics, then series defaults.
func (p *MarketProvider) classify(title string, s seriesSpec) (string, market.Tier, market.Surface) {
	tournament := title
	if i := strings.Index(title, ":"); i >= 0 {
		tournament = strings.TrimSpace(title[:i])
	}

	if rule, ok := p.pricing.Classify(title); ok {
		return tournament, rule.Tier, rule.Surface
	}

	tier := s.tier
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "challenger"):
		tier = market.TierLower
	case strings.Contains(lower, "australian open"),
		strings.Contains(lower, "roland garros"),
		strings.Contains(lower, "french open"),
		strings.Contains(lower, "wimbledon"),
		strings.Contains(lower, "us open"):
		tier = market.TierMajor
	}

	surface := market.SurfaceHard
	switch {
	case strings.Contains(lower, "clay"):
		surface = market.SurfaceClay
	case strings.Contains(lower, "grass"):
		surface = market.SurfaceGrass
	}
	return tournament, tier, surface
}
