package engine

import (
	"math"
	"testing"

	"github.com/charleschow/tennis-trading/internal/core/market"
)

func snap(mut ...func(*market.Snapshot)) market.Snapshot {
	s := market.Snapshot{
		Favorite:       market.PlayerRef{Name: "Jannik Sinner", Ranking: 1},
		Underdog:       market.PlayerRef{Name: "Gael Monfils", Ranking: 38},
		FavProbability: 0.75,
		MarketCents:    75,
		Tournament:     "ATP Rotterdam",
		Tier:           market.TierTour,
		Surface:        market.SurfaceHard,
		VolumeDollars:  5000,
		Ticker:         "KXATPMATCH-26FEB-SIN",
		EventTicker:    "KXATPMATCH-26FEB-SINMON",
	}
	for _, f := range mut {
		f(&s)
	}
	return s
}

func TestEvaluateBaseCase(t *testing.T) {
	// 0.75 favorite, main tour, hard court: factor 0.70, target 0.525.
	d := Evaluate(snap(func(s *market.Snapshot) {
		s.Favorite.Ranking = 0
		s.Underdog.Ranking = 0
	}), Defaults())

	if d.Signal != SignalBuy {
		t.Fatalf("signal = %s, want BUY (%s)", d.Signal, d.SkipReason)
	}
	if d.Factor != 0.70 {
		t.Errorf("factor = %v, want 0.70", d.Factor)
	}
	if d.TargetPrice != 0.525 {
		t.Errorf("target = %v, want 0.525", d.TargetPrice)
	}
}

func TestFactorUnrounded(t *testing.T) {
	// Raw product 0.75×0.70 = 0.525; Factor itself must already be 2dp.
	got := Factor(snap(), Defaults())
	if got != math.Round(got*100)/100 {
		t.Errorf("factor %v not rounded to 2 decimals", got)
	}
}

func TestFilters(t *testing.T) {
	p := Defaults()
	cases := []struct {
		name string
		mut  func(*market.Snapshot)
	}{
		{"grand slam", func(s *market.Snapshot) { s.Tier = market.TierMajor }},
		{"below floor", func(s *market.Snapshot) { s.FavProbability = 0.69 }},
		{"above ceiling", func(s *market.Snapshot) { s.FavProbability = 0.93 }},
		{"illiquid", func(s *market.Snapshot) { s.VolumeDollars = 99 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(snap(tc.mut), p)
			if d.Signal != SignalSkip {
				t.Fatalf("signal = %s, want SKIP", d.Signal)
			}
			if d.SkipReason == "" {
				t.Error("skip without reason")
			}
			if d.TargetPrice != 0 || d.Factor != 0 {
				t.Error("skip decision carries pricing fields")
			}
		})
	}
}

func TestMajorAlwaysSkips(t *testing.T) {
	// Even a perfect match skips on tier alone.
	d := Evaluate(snap(func(s *market.Snapshot) {
		s.Tier = market.TierMajor
		s.FavProbability = 0.80
		s.VolumeDollars = 1e6
	}), Defaults())
	if d.Signal != SignalSkip {
		t.Fatalf("major tier traded: %+v", d)
	}
}

func TestProbabilityBoundariesInclusive(t *testing.T) {
	p := Defaults()
	for _, prob := range []float64{0.70, 0.92} {
		d := Evaluate(snap(func(s *market.Snapshot) { s.FavProbability = prob }), p)
		if d.Signal != SignalBuy {
			t.Errorf("prob %.2f: signal = %s (%s), want BUY", prob, d.Signal, d.SkipReason)
		}
	}
}

func TestSurfaceAndTierAdjustments(t *testing.T) {
	p := Defaults()
	cases := []struct {
		tier    market.Tier
		surface market.Surface
		factor  float64
	}{
		{market.TierTour, market.SurfaceClay, 0.68},
		{market.TierTour, market.SurfaceGrass, 0.73},
		{market.TierLower, market.SurfaceHard, 0.65},
		{market.TierSecondary, market.SurfaceHard, 0.70},
	}
	for _, tc := range cases {
		d := Evaluate(snap(func(s *market.Snapshot) {
			s.Tier = tc.tier
			s.Surface = tc.surface
			s.Favorite.Ranking = 0 // keep gap out of it
		}), p)
		if d.Factor != tc.factor {
			t.Errorf("%s/%s: factor = %v, want %v", tc.tier, tc.surface, d.Factor, tc.factor)
		}
	}
}

func TestRankingGap(t *testing.T) {
	p := Defaults()
	p.MaxRankingGap = 30

	d := Evaluate(snap(), p) // gap 37 > 30
	if d.Signal != SignalSkip {
		t.Fatalf("gap over max not filtered: %+v", d)
	}

	// Unknown ranking: never filtered on gap, priced with zero gap adj.
	p.GapAdjLarge = 0.05
	d = Evaluate(snap(func(s *market.Snapshot) { s.Underdog.Ranking = 0 }), p)
	if d.Signal != SignalBuy {
		t.Fatalf("unknown gap filtered: %s %s", d.Signal, d.SkipReason)
	}
	if d.Factor != 0.70 {
		t.Errorf("unknown gap got adjustment: factor %v", d.Factor)
	}

	// Known large gap picks up the large-tier adjustment.
	p.MaxRankingGap = 0
	d = Evaluate(snap(func(s *market.Snapshot) { s.Underdog.Ranking = 60 }), p)
	if d.Factor != 0.75 {
		t.Errorf("large gap factor = %v, want 0.75", d.Factor)
	}
}

func TestEdgeSign(t *testing.T) {
	// Market at 75¢, target 0.525: edge 0.225, market above our limit.
	d := Evaluate(snap(), Defaults())
	if math.Abs(d.Edge-0.225) > 1e-9 {
		t.Errorf("edge = %v, want 0.225", d.Edge)
	}

	// Market below target: edge negative (favorable).
	d = Evaluate(snap(func(s *market.Snapshot) { s.MarketCents = 50 }), Defaults())
	if d.Edge >= 0 {
		t.Errorf("edge = %v, want < 0", d.Edge)
	}
}

func TestCrossMode(t *testing.T) {
	p := Defaults()
	p.SignalMode = ModeCross

	if d := Evaluate(snap(), p); d.Signal != SignalWait {
		t.Errorf("market 75 > target: signal = %s, want WAIT", d.Signal)
	}
	if d := Evaluate(snap(func(s *market.Snapshot) { s.MarketCents = 52 }), p); d.Signal != SignalBuy {
		t.Errorf("market below target: signal = %s, want BUY", d.Signal)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	s, p := snap(), Defaults()
	first := Evaluate(s, p)
	for range 5 {
		if Evaluate(s, p) != first {
			t.Fatal("same input produced different decisions")
		}
	}
}

func TestEvaluateAllOrdering(t *testing.T) {
	p := Defaults()
	p.SignalMode = ModeCross
	batch := []market.Snapshot{
		snap(func(s *market.Snapshot) { s.Tier = market.TierMajor }),              // SKIP
		snap(func(s *market.Snapshot) { s.MarketCents = 75 }),                     // WAIT
		snap(func(s *market.Snapshot) { s.MarketCents = 50 }),                     // BUY edge -0.03
		snap(func(s *market.Snapshot) { s.MarketCents = 52 }),                     // BUY edge -0.01
		snap(func(s *market.Snapshot) { s.FavProbability = 0.60 }),                // SKIP
	}
	out := EvaluateAll(batch, p)

	wantSignals := []Signal{SignalBuy, SignalBuy, SignalWait, SignalSkip, SignalSkip}
	for i, want := range wantSignals {
		if out[i].Signal != want {
			t.Fatalf("position %d: signal = %s, want %s", i, out[i].Signal, want)
		}
	}
	// Within BUY, smaller edge (deeper below target) sorts first.
	if out[0].Match.MarketCents != 50 || out[1].Match.MarketCents != 52 {
		t.Errorf("BUY ordering wrong: %d then %d", out[0].Match.MarketCents, out[1].Match.MarketCents)
	}
}

func TestTargetCents(t *testing.T) {
	d := Decision{TargetPrice: 0.525}
	if d.TargetCents() != 53 {
		t.Errorf("TargetCents = %d, want 53", d.TargetCents())
	}
}
