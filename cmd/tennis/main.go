package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charleschow/tennis-trading/internal/adapters/inbound/httpapi"
	"github.com/charleschow/tennis-trading/internal/adapters/kalshi_auth"
	"github.com/charleschow/tennis-trading/internal/adapters/outbound/apisports"
	"github.com/charleschow/tennis-trading/internal/adapters/outbound/kalshi_http"
	"github.com/charleschow/tennis-trading/internal/adapters/outbound/matchstat"
	"github.com/charleschow/tennis-trading/internal/config"
	"github.com/charleschow/tennis-trading/internal/core/automation"
	"github.com/charleschow/tennis-trading/internal/core/betlog"
	"github.com/charleschow/tennis-trading/internal/core/confirm"
	"github.com/charleschow/tennis-trading/internal/core/execution"
	"github.com/charleschow/tennis-trading/internal/core/ledger"
	"github.com/charleschow/tennis-trading/internal/events"
	"github.com/charleschow/tennis-trading/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	telemetry.Infof("Starting tennis trader  dry_run=%v", cfg.DryRun)

	bus := events.NewBus()

	// ── Pricing model ───────────────────────────────────────────
	pricing, err := config.LoadPricing(cfg.PricingPath)
	if err != nil {
		telemetry.Errorf("Failed to load pricing: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("Pricing loaded  mode=%s base=%.2f  tournament_rules=%d",
		pricing.Params.SignalMode, pricing.Params.BaseFactor, len(pricing.Tournaments))

	// ── Stores ──────────────────────────────────────────────────
	orders, err := ledger.Open(cfg.StorePath)
	if err != nil {
		telemetry.Errorf("Failed to open order ledger: %v", err)
		os.Exit(1)
	}
	defer orders.Close()

	bets, err := betlog.Open(filepath.Join(filepath.Dir(cfg.StorePath), "bets.db"))
	if err != nil {
		telemetry.Errorf("Failed to open bet log: %v", err)
		os.Exit(1)
	}
	defer bets.Close()

	// ── Kalshi auth + client ────────────────────────────────────
	signer, err := kalshi_auth.NewSignerFromFile(cfg.KalshiKeyID, cfg.KalshiKeyFile)
	if err != nil {
		telemetry.Errorf("Kalshi auth: %v", err)
		os.Exit(1)
	}
	if !signer.Enabled() {
		// Market data is public; only order placement needs credentials.
		telemetry.Warnf("Kalshi credentials missing — live orders disabled")
	}
	kalshiClient := kalshi_http.NewClient(cfg.KalshiBaseURL, signer)

	// ── Adapters ────────────────────────────────────────────────
	var rankings kalshi_http.RankingSource
	if cfg.APISportsKey != "" {
		rankings = apisports.NewRankingsClient(cfg.APISportsKey, cfg.APISportsBaseURL, cfg.RankingsTTL)
	}
	provider := kalshi_http.NewMarketProvider(kalshiClient, pricing, rankings)
	oracle := matchstat.NewClient(cfg.MatchstatAPIKey, cfg.MatchstatHost)
	policy := confirm.Policy{MinWinPct: cfg.H2HMinWinPct, MinMatches: cfg.H2HMinMatches}

	var placer execution.OrderPlacer
	if signer.Enabled() {
		placer = kalshiClient
	}
	exec := execution.NewService(placer, cfg.MaxContractsPerOrder, cfg.DryRun)

	// ── Automation ──────────────────────────────────────────────
	runner := automation.NewRunner(provider, oracle, policy, exec, orders,
		pricing.Params, cfg.ContractsPerTrade, bus)
	scheduler := automation.NewScheduler(runner, cfg.CycleInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Autostart {
		scheduler.Start(ctx)
	}

	// ── HTTP API ────────────────────────────────────────────────
	var balance httpapi.BalanceSource
	if signer.Enabled() {
		balance = kalshiClient
	}
	hub := httpapi.NewHub(bus)
	handler := httpapi.NewHandler(runner, scheduler, orders, bets, balance, hub, cfg.DryRun)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("API listening on %q", cfg.ListenAddr)

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	telemetry.Infof("Shutdown complete")
}
