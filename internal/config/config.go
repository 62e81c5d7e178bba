package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Kalshi API
	KalshiBaseURL string
	KalshiKeyID   string
	KalshiKeyFile string

	// Matchstat head-to-head confirmation (RapidAPI)
	MatchstatAPIKey string
	MatchstatHost   string
	H2HMinWinPct    float64
	H2HMinMatches   int

	// API-Sports rankings
	APISportsKey     string
	APISportsBaseURL string
	RankingsTTL      time.Duration

	// Trading. DryRun defaults to true — live orders are opt-in.
	DryRun               bool
	ContractsPerTrade    int
	MaxContractsPerOrder int

	// Automation
	CycleInterval time.Duration
	Autostart     bool

	// Storage & pricing model
	StorePath   string
	PricingPath string

	// HTTP dashboard/API
	ListenAddr string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		KalshiBaseURL: envStr("KALSHI_BASE_URL", "https://api.elections.kalshi.com"),
		KalshiKeyID:   envStr("KALSHI_API_KEY", ""),
		KalshiKeyFile: envStr("KALSHI_KEY_FILE", ""),

		MatchstatAPIKey: envStr("MATCHSTAT_API_KEY", ""),
		MatchstatHost:   envStr("MATCHSTAT_HOST", "tennis-api-atp-wta-itf.p.rapidapi.com"),
		H2HMinWinPct:    envFloat("H2H_MIN_WIN_PCT", 0.60),
		H2HMinMatches:   envInt("H2H_MIN_MATCHES", 3),

		APISportsKey:     envStr("API_SPORTS_KEY", ""),
		APISportsBaseURL: envStr("API_SPORTS_BASE_URL", "https://v1.tennis.api-sports.io"),
		// Rankings move weekly; a day of staleness is fine.
		RankingsTTL: time.Duration(envInt("RANKINGS_TTL_HOURS", 24)) * time.Hour,

		DryRun:               envStr("DRY_RUN", "true") != "false",
		ContractsPerTrade:    envInt("CONTRACTS_PER_TRADE", 50),
		MaxContractsPerOrder: envInt("MAX_CONTRACTS_PER_ORDER", 100),

		CycleInterval: time.Duration(envInt("CYCLE_INTERVAL_MINUTES", 10)) * time.Minute,
		Autostart:     envStr("AUTOMATION_AUTOSTART", "false") == "true",

		StorePath:   envStr("STORE_PATH", "data/orders.db"),
		PricingPath: envStr("PRICING_PATH", "internal/config/pricing.yaml"),

		ListenAddr: envStr("LISTEN_ADDR", "0.0.0.0:8000"),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
