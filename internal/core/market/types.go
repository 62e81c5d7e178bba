package market

import "time"

type Tier string

const (
	TierTour      Tier = "ATP"        // main tour (ATP and WTA alike)
	TierSecondary Tier = "WTA"        // kept as its own tier for classification/stats
	TierLower     Tier = "Challenger"
	TierMajor     Tier = "Grand Slam" // never traded
)

type Surface string

const (
	SurfaceHard  Surface = "Hard"
	SurfaceClay  Surface = "Clay"
	SurfaceGrass Surface = "Grass"
)

// PlayerRef identifies a player within a single snapshot. Kalshi gives no
// stable numeric ID, so the name is the identifier. Ranking 0 = unknown.
type PlayerRef struct {
	Name    string `json:"name"`
	Ranking int    `json:"ranking,omitempty"`
}

// Snapshot is one open match market, normalized so Favorite always carries
// the >= 0.50 side. Built fresh each poll cycle and never persisted; only
// decisions derived from it are.
type Snapshot struct {
	Favorite       PlayerRef `json:"player_fav"`
	Underdog       PlayerRef `json:"player_dog"`
	FavProbability float64   `json:"fav_probability"` // 0.5–1.0
	MarketCents    int       `json:"market_cents"`    // favorite YES price, 1–99
	Tournament     string    `json:"tournament"`
	Tier           Tier      `json:"tier"`
	Surface        Surface   `json:"surface"`
	VolumeDollars  float64   `json:"volume"`
	Ticker         string    `json:"ticker"`       // market to trade
	EventTicker    string    `json:"event_ticker"` // dedup key for the real-world match
	CloseTime      time.Time `json:"close_time,omitzero"`
}

// Tradable reports whether the snapshot carries the identifiers the
// decision loop needs for safe dedup. Snapshots failing this are counted
// and hard-skipped, never submitted.
func (s Snapshot) Tradable() bool {
	return s.Ticker != "" && s.EventTicker != ""
}

// RankingGap returns the absolute ranking difference and whether both
// rankings are known. An unknown gap prices as zero but is never filtered.
func (s Snapshot) RankingGap() (int, bool) {
	if s.Favorite.Ranking == 0 || s.Underdog.Ranking == 0 {
		return 0, false
	}
	gap := s.Favorite.Ranking - s.Underdog.Ranking
	if gap < 0 {
		gap = -gap
	}
	return gap, true
}
