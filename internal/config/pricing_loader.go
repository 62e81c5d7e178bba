package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/tennis-trading/internal/core/engine"
	"github.com/charleschow/tennis-trading/internal/core/market"
)

// TournamentRule classifies a tournament title into a tier and surface.
// Match is a lowercase substring tested against the event title.
type TournamentRule struct {
	Match   string         `yaml:"match"`
	Tier    market.Tier    `yaml:"tier"`
	Surface market.Surface `yaml:"surface"`
}

type Pricing struct {
	Params      engine.Params    `yaml:"pricing"`
	Tournaments []TournamentRule `yaml:"tournaments"`
}

// LoadPricing reads the tunables file. Keys absent from the file keep
// their defaults, so a sparse override file is fine. A missing file is
// not an error: the shipped defaults are a complete model.
func LoadPricing(path string) (Pricing, error) {
	p := Pricing{Params: engine.Defaults()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return Pricing{}, fmt.Errorf("read pricing: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pricing{}, fmt.Errorf("parse pricing: %w", err)
	}
	return p, nil
}

// Classify resolves a tournament title against the rule table, first
// match wins. The second return is false when no rule applies.
func (p Pricing) Classify(title string) (TournamentRule, bool) {
	lower := strings.ToLower(title)
	for _, r := range p.Tournaments {
		if r.Match != "" && strings.Contains(lower, r.Match) {
			return r, true
		}
	}
	return TournamentRule{}, false
}
