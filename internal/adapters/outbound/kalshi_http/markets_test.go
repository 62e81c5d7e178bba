package kalshi_http

import (
	"testing"

	"github.com/charleschow/tennis-trading/internal/config"
	"github.com/charleschow/tennis-trading/internal/core/market"
)

type staticRankings map[string]int

func (r staticRankings) Ranking(name string) int { return r[name] }

func provider(rankings RankingSource) *MarketProvider {
	pricing := config.Pricing{
		Tournaments: []config.TournamentRule{
			{Match: "wimbledon", Tier: market.TierMajor, Surface: market.SurfaceGrass},
			{Match: "madrid", Tier: market.TierTour, Surface: market.SurfaceClay},
		},
	}
	return NewMarketProvider(nil, pricing, rankings)
}

func atpSeries() seriesSpec { return seriesSpec{ticker: "KXATPMATCH", tier: market.TierTour} }

func TestSnapshotFavoriteSide(t *testing.T) {
	raw := []apiMarket{
		{
			Ticker: "T1-SIN", EventTicker: "EVT-1",
			Title: "Pro Tennis: Sinner vs Monfils Winner?", YesSubTitle: "Jannik Sinner",
			LastPrice: 78, Volume: 4000,
		},
		{
			Ticker: "T1-MON", EventTicker: "EVT-1",
			Title: "Pro Tennis: Sinner vs Monfils Winner?", YesSubTitle: "Gael Monfils",
			LastPrice: 22, Volume: 1000,
		},
	}

	snaps := provider(staticRankings{"Jannik Sinner": 1, "Gael Monfils": 42}).snapshots(raw, atpSeries())
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	s := snaps[0]
	if s.Favorite.Name != "Jannik Sinner" || s.Underdog.Name != "Gael Monfils" {
		t.Errorf("players: %+v / %+v", s.Favorite, s.Underdog)
	}
	if s.MarketCents != 78 || s.FavProbability != 0.78 {
		t.Errorf("price: %d / %v", s.MarketCents, s.FavProbability)
	}
	if s.Ticker != "T1-SIN" || s.EventTicker != "EVT-1" {
		t.Errorf("tickers: %s / %s", s.Ticker, s.EventTicker)
	}
	if s.Favorite.Ranking != 1 || s.Underdog.Ranking != 42 {
		t.Errorf("rankings: %d / %d", s.Favorite.Ranking, s.Underdog.Ranking)
	}
	// Both sides' contracts at the favorite's price.
	if want := 5000 * 0.78; s.VolumeDollars != want {
		t.Errorf("volume = %v, want %v", s.VolumeDollars, want)
	}
}

func TestSnapshotUnderdogFromTitleWhenSiblingMissing(t *testing.T) {
	raw := []apiMarket{{
		Ticker: "T2-ALC", EventTicker: "EVT-2",
		Title: "Madrid Open: Alcaraz vs Zverev Winner?", YesSubTitle: "Carlos Alcaraz",
		LastPrice: 81,
	}}

	snaps := provider(nil).snapshots(raw, atpSeries())
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	s := snaps[0]
	if s.Underdog.Name != "Zverev" {
		t.Errorf("underdog = %q", s.Underdog.Name)
	}
	if s.Tournament != "Madrid Open" || s.Surface != market.SurfaceClay {
		t.Errorf("classification: %s / %s", s.Tournament, s.Surface)
	}
	if s.Favorite.Ranking != 0 {
		t.Error("ranking set without a source")
	}
}

func TestSnapshotNoPricedFavoriteDropped(t *testing.T) {
	raw := []apiMarket{
		{Ticker: "T3-A", EventTicker: "EVT-3", Title: "A vs B", YesSubTitle: "A", LastPrice: 48},
		{Ticker: "T3-B", EventTicker: "EVT-3", Title: "A vs B", YesSubTitle: "B", LastPrice: 49},
	}
	if snaps := provider(nil).snapshots(raw, atpSeries()); len(snaps) != 0 {
		t.Errorf("coin-flip event produced snapshots: %+v", snaps)
	}
}

func TestSnapshotUnparseableTitleDropped(t *testing.T) {
	raw := []apiMarket{{
		Ticker: "T4", EventTicker: "EVT-4",
		Title: "High temp in NYC today?", LastPrice: 70,
	}}
	if snaps := provider(nil).snapshots(raw, atpSeries()); len(snaps) != 0 {
		t.Errorf("non-match title produced snapshots: %+v", snaps)
	}
}

func TestSnapshotClassifierAndFallbacks(t *testing.T) {
	raw := []apiMarket{
		{Ticker: "T5", EventTicker: "EVT-5", Title: "Wimbledon: Djokovic vs Alcaraz Winner?",
			YesSubTitle: "Novak Djokovic", LastPrice: 60},
		{Ticker: "T6", EventTicker: "EVT-6", Title: "Lyon Challenger: Fils vs Gaston Winner?",
			YesSubTitle: "Arthur Fils", LastPrice: 72},
	}

	snaps := provider(nil).snapshots(raw, atpSeries())
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	if snaps[0].Tier != market.TierMajor || snaps[0].Surface != market.SurfaceGrass {
		t.Errorf("wimbledon: %s / %s", snaps[0].Tier, snaps[0].Surface)
	}
	// No rule matches the challenger, keyword fallback classifies it.
	if snaps[1].Tier != market.TierLower || snaps[1].Surface != market.SurfaceHard {
		t.Errorf("challenger: %s / %s", snaps[1].Tier, snaps[1].Surface)
	}
}

func TestPriceCentsFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		m    apiMarket
		want int
		ok   bool
	}{
		{"last trade wins", apiMarket{LastPrice: 74, YesBid: 60, YesAsk: 70}, 74, true},
		{"bid/ask midpoint", apiMarket{YesBid: 70, YesAsk: 76}, 73, true},
		{"ask only", apiMarket{YesAsk: 80}, 80, true},
		{"bid only", apiMarket{YesBid: 65}, 65, true},
		{"unpriced", apiMarket{}, 0, false},
		{"settled at 100", apiMarket{LastPrice: 100}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := priceCents(tc.m)
			if got != tc.want || ok != tc.ok {
				t.Errorf("priceCents = %d,%v want %d,%v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestParsePlayers(t *testing.T) {
	cases := []struct {
		title string
		a, b  string
		ok    bool
	}{
		{"Pro Tennis: Sinner vs Monfils Winner?", "Sinner", "Monfils", true},
		{"Swiatek vs. Gauff", "Swiatek", "Gauff", true},
		{"ATP Rotterdam: de Minaur vs Rune winner?", "de Minaur", "Rune", true},
		{"Will it rain tomorrow?", "", "", false},
	}
	for _, tc := range cases {
		a, b, ok := parsePlayers(tc.title)
		if a != tc.a || b != tc.b || ok != tc.ok {
			t.Errorf("parsePlayers(%q) = %q,%q,%v", tc.title, a, b, ok)
		}
	}
}
