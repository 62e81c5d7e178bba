package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charleschow/tennis-trading/internal/core/market"
)

func TestLoadPricingSparseOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	body := `
pricing:
  base_factor: 0.65
  surface_adjustments:
    Clay: -0.04
tournaments:
  - match: "wimbledon"
    tier: "Grand Slam"
    surface: "Grass"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPricing(path)
	if err != nil {
		t.Fatalf("LoadPricing: %v", err)
	}
	if p.Params.BaseFactor != 0.65 {
		t.Errorf("base factor = %v", p.Params.BaseFactor)
	}
	// Overridden key replaces, untouched keys survive.
	if p.Params.SurfaceAdj[market.SurfaceClay] != -0.04 {
		t.Errorf("clay adj = %v", p.Params.SurfaceAdj[market.SurfaceClay])
	}
	if p.Params.SurfaceAdj[market.SurfaceGrass] != 0.03 {
		t.Errorf("grass adj lost: %v", p.Params.SurfaceAdj[market.SurfaceGrass])
	}
	if p.Params.MinFavoritePct != 0.70 {
		t.Errorf("min favorite pct = %v", p.Params.MinFavoritePct)
	}

	rule, ok := p.Classify("Wimbledon Gentlemen's Singles")
	if !ok || rule.Tier != market.TierMajor || rule.Surface != market.SurfaceGrass {
		t.Errorf("classify = %+v ok=%v", rule, ok)
	}
	if _, ok := p.Classify("ATP Rotterdam"); ok {
		t.Error("unlisted tournament matched a rule")
	}
}

func TestLoadPricingMissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPricing(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadPricing: %v", err)
	}
	if p.Params.BaseFactor != 0.70 || len(p.Tournaments) != 0 {
		t.Errorf("defaults not applied: %+v", p.Params)
	}
}
