// Package httpapi exposes the control surface: automation start/stop/run,
// the order ledger, tracked-bet bookkeeping, and a websocket feed of
// cycle summaries.
//
// Routes:
//
//	GET  /health
//	GET  /api/automation/status
//	POST /api/automation/run
//	POST /api/automation/start
//	POST /api/automation/stop
//	GET  /api/orders
//	GET  /api/balance
//	POST /api/bets/track
//	GET  /api/bets
//	GET  /api/bets/stats
//	POST /api/bets/{id}/outcome
//	GET  /ws
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charleschow/tennis-trading/internal/core/automation"
	"github.com/charleschow/tennis-trading/internal/core/betlog"
	"github.com/charleschow/tennis-trading/internal/core/ledger"
	"github.com/charleschow/tennis-trading/internal/telemetry"
)

// BalanceSource is the optional exchange balance lookup; nil when running
// without credentials.
type BalanceSource interface {
	GetBalance(ctx context.Context) (int, error)
}

type Handler struct {
	runner    *automation.Runner
	scheduler *automation.Scheduler
	orders    *ledger.Store
	bets      *betlog.Store
	balance   BalanceSource
	hub       *Hub
	dryRun    bool
}

func NewHandler(runner *automation.Runner, scheduler *automation.Scheduler,
	orders *ledger.Store, bets *betlog.Store, balance BalanceSource,
	hub *Hub, dryRun bool) *Handler {
	return &Handler{
		runner:    runner,
		scheduler: scheduler,
		orders:    orders,
		bets:      bets,
		balance:   balance,
		hub:       hub,
		dryRun:    dryRun,
	}
}

// RegisterRoutes wires HTTP routes onto the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/automation/status", h.automationStatus)
	mux.HandleFunc("POST /api/automation/run", h.automationRun)
	mux.HandleFunc("POST /api/automation/start", h.automationStart)
	mux.HandleFunc("POST /api/automation/stop", h.automationStop)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/balance", h.getBalance)
	mux.HandleFunc("POST /api/bets/track", h.trackBet)
	mux.HandleFunc("GET /api/bets", h.listBets)
	mux.HandleFunc("GET /api/bets/stats", h.betStats)
	mux.HandleFunc("POST /api/bets/{id}/outcome", h.recordOutcome)
	if h.hub != nil {
		mux.HandleFunc("GET /ws", h.hub.ServeWS)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dry_run": h.dryRun,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) automationStatus(w http.ResponseWriter, r *http.Request) {
	last, total := h.runner.LastSummary()
	writeJSON(w, http.StatusOK, map[string]any{
		"scheduler":           h.scheduler.State(),
		"dry_run":             h.dryRun,
		"last_cycle":          last,
		"orders_this_session": total,
	})
}

func (h *Handler) automationRun(w http.ResponseWriter, r *http.Request) {
	sum := h.runner.RunCycle(r.Context())
	status := http.StatusOK
	if sum.Error != "" {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, sum)
}

func (h *Handler) automationStart(w http.ResponseWriter, r *http.Request) {
	// Detached from the request: the loop outlives this call.
	h.scheduler.Start(context.Background())
	writeJSON(w, http.StatusOK, h.scheduler.State())
}

func (h *Handler) automationStop(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Stop()
	writeJSON(w, http.StatusOK, h.scheduler.State())
}

type orderRow struct {
	ID          int64    `json:"id"`
	EventTicker string   `json:"event_ticker"`
	Ticker      string   `json:"ticker"`
	Favorite    string   `json:"player_fav"`
	Underdog    string   `json:"player_dog"`
	Tournament  string   `json:"tournament"`
	TargetCents int      `json:"target_cents"`
	Contracts   int      `json:"contracts"`
	MarketCents int      `json:"market_cents"`
	H2HWinPct   *float64 `json:"h2h_win_pct,omitempty"`
	DryRun      bool     `json:"dry_run"`
	Status      string   `json:"status"`
	PlacedAt    string   `json:"placed_at"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := h.orders.All(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rows := make([]orderRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, orderRow{
			ID:          rec.ID,
			EventTicker: rec.EventTicker,
			Ticker:      rec.Ticker,
			Favorite:    rec.Favorite,
			Underdog:    rec.Underdog,
			Tournament:  rec.Tournament,
			TargetCents: rec.TargetCents,
			Contracts:   rec.Contracts,
			MarketCents: rec.MarketCents,
			H2HWinPct:   rec.H2HWinPct,
			DryRun:      rec.DryRun,
			Status:      string(rec.Status),
			PlacedAt:    rec.PlacedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": rows, "count": len(rows)})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	if h.balance == nil {
		writeError(w, http.StatusServiceUnavailable, "exchange credentials not configured")
		return
	}
	cents, err := h.balance.GetBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance_cents":   cents,
		"balance_dollars": float64(cents) / 100,
	})
}

func (h *Handler) trackBet(w http.ResponseWriter, r *http.Request) {
	var bet betlog.Bet
	if err := json.NewDecoder(r.Body).Decode(&bet); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if bet.Favorite == "" || bet.Underdog == "" {
		writeError(w, http.StatusBadRequest, "player_fav and player_dog are required")
		return
	}
	if bet.FavProb <= 0 || bet.FavProb > 1 {
		writeError(w, http.StatusBadRequest, "fav_probability must be in (0, 1]")
		return
	}
	if bet.MarketCents < 1 || bet.MarketCents > 99 {
		writeError(w, http.StatusBadRequest, "market_cents must be 1-99")
		return
	}
	if bet.TargetCents < 1 || bet.TargetCents > 99 {
		writeError(w, http.StatusBadRequest, "target_cents must be 1-99")
		return
	}

	tracked, err := h.bets.Track(r.Context(), bet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	telemetry.Infof("httpapi: tracking bet %d  %s vs %s @ %d¢",
		tracked.ID, tracked.Favorite, tracked.Underdog, tracked.TargetCents)
	writeJSON(w, http.StatusCreated, tracked)
}

func (h *Handler) listBets(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != betlog.StatusPending && status != betlog.StatusCompleted {
		writeError(w, http.StatusBadRequest, "status must be pending or completed")
		return
	}
	bets, err := h.bets.All(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if bets == nil {
		bets = []betlog.Bet{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bets": bets, "count": len(bets)})
}

func (h *Handler) betStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bets.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type outcomeRequest struct {
	LowestCents int           `json:"lowest_price_reached"`
	Winner      betlog.Winner `json:"match_outcome"`
	Contracts   int           `json:"contracts"`
}

func (h *Handler) recordOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bet id")
		return
	}

	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.LowestCents < 1 || req.LowestCents > 99 {
		writeError(w, http.StatusBadRequest, "lowest_price_reached must be 1-99")
		return
	}
	if req.Contracts < 0 {
		writeError(w, http.StatusBadRequest, "contracts must be non-negative")
		return
	}

	bet, err := h.bets.RecordOutcome(r.Context(), id, req.LowestCents, req.Winner, req.Contracts)
	switch {
	case errors.Is(err, betlog.ErrBadOutcome):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, betlog.ErrCompleted):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	case bet == nil:
		writeError(w, http.StatusNotFound, "no such bet")
		return
	}
	writeJSON(w, http.StatusOK, bet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("httpapi: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
