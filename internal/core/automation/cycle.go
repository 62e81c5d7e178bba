// Package automation orchestrates one evaluation cycle: fetch open
// matches, price them, and for each BUY signal run the dedup check, the
// head-to-head confirmation, and order submission, recording exactly one
// terminal ledger row per event.
package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charleschow/tennis-trading/internal/core/confirm"
	"github.com/charleschow/tennis-trading/internal/core/engine"
	"github.com/charleschow/tennis-trading/internal/core/ledger"
	"github.com/charleschow/tennis-trading/internal/events"
	"github.com/charleschow/tennis-trading/internal/telemetry"
)

// Detail reconstructs what happened to one match within a cycle.
type Detail struct {
	Favorite     string   `json:"player_fav"`
	Underdog     string   `json:"player_dog"`
	Tournament   string   `json:"tournament"`
	MarketCents  int      `json:"market_cents"`
	TargetCents  int      `json:"target_cents"`
	Ticker       string   `json:"ticker"`
	EventTicker  string   `json:"event_ticker"`
	Action       string   `json:"action"`
	H2HWinPct    *float64 `json:"h2h_win_pct,omitempty"`
	H2HConfirmed *bool    `json:"h2h_confirmed,omitempty"`
}

// Summary aggregates one cycle for logs and the status endpoint.
type Summary struct {
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitzero"`
	DryRun          bool      `json:"dry_run"`
	MarketsFetched  int       `json:"markets_fetched"`
	BuySignals      int       `json:"buy_signals"`
	WaitSignals     int       `json:"wait_signals"`
	AlreadyOrdered  int       `json:"already_ordered"`
	SkippedNoTicker int       `json:"skipped_no_ticker"`
	H2HChecked      int       `json:"h2h_checked"`
	H2HConfirmed    int       `json:"h2h_confirmed"`
	H2HRejected     int       `json:"h2h_rejected"`
	OrdersPlaced    int       `json:"orders_placed"`
	OrdersFailed    int       `json:"orders_failed"`
	Details         []Detail  `json:"details"`
	Error           string    `json:"error,omitempty"`
}

// Runner executes cycles one at a time; the mutex serializes the scheduled
// trigger against on-demand runs.
type Runner struct {
	provider SnapshotProvider
	oracle   confirm.Oracle
	policy   confirm.Policy
	exec     OrderSubmitter
	orders   *ledger.Store
	params   engine.Params
	bus      *events.Bus

	contractsPerTrade int
	oracleTimeout     time.Duration

	mu          sync.Mutex
	lastSummary *Summary
	totalOrders int
}

func NewRunner(provider SnapshotProvider, oracle confirm.Oracle, policy confirm.Policy,
	exec OrderSubmitter, orders *ledger.Store, params engine.Params,
	contractsPerTrade int, bus *events.Bus) *Runner {
	return &Runner{
		provider:          provider,
		oracle:            oracle,
		policy:            policy,
		exec:              exec,
		orders:            orders,
		params:            params,
		bus:               bus,
		contractsPerTrade: contractsPerTrade,
		oracleTimeout:     8 * time.Second,
	}
}

// LastSummary returns the most recent cycle summary, nil before the first
// run, plus the session order count.
func (r *Runner) LastSummary() (*Summary, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSummary, r.totalOrders
}

// RunCycle executes one complete cycle and returns its summary. A failed
// fetch or a panic lands in Summary.Error; the caller's scheduler keeps
// going either way.
func (r *Runner) RunCycle(ctx context.Context) (summary *Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	summary = &Summary{
		StartedAt: start.UTC(),
		DryRun:    r.exec.DryRun(),
		Details:   []Detail{},
	}
	telemetry.Metrics.CyclesRun.Inc()

	defer func() {
		if rec := recover(); rec != nil {
			summary.Error = fmt.Sprintf("cycle panic: %v", rec)
			telemetry.Errorf("automation: %s", summary.Error)
			telemetry.Metrics.CycleErrors.Inc()
		}
		summary.FinishedAt = time.Now().UTC()
		r.lastSummary = summary
		telemetry.Metrics.CycleLatency.Record(time.Since(start))
		if r.bus != nil {
			r.bus.Publish(events.Event{
				Type:      events.EventCycleComplete,
				Timestamp: time.Now(),
				Payload:   *summary,
			})
		}
		telemetry.Infof("automation: cycle complete — %d orders (%d confirmed) | dry_run=%v",
			summary.OrdersPlaced, summary.H2HConfirmed, summary.DryRun)
	}()

	fetchStart := time.Now()
	snapshots, err := r.provider.FetchOpenMatches(ctx)
	telemetry.Metrics.MarketFetchTime.Record(time.Since(fetchStart))
	if err != nil {
		summary.Error = fmt.Sprintf("fetch markets: %v", err)
		telemetry.Errorf("automation: %s", summary.Error)
		telemetry.Metrics.CycleErrors.Inc()
		return summary
	}
	summary.MarketsFetched = len(snapshots)
	telemetry.Metrics.MarketsFetched.Add(int64(len(snapshots)))

	decisions := engine.EvaluateAll(snapshots, r.params)
	for _, d := range decisions {
		switch d.Signal {
		case engine.SignalBuy:
			summary.BuySignals++
		case engine.SignalWait:
			summary.WaitSignals++
		}
	}
	telemetry.Metrics.BuySignals.Add(int64(summary.BuySignals))
	telemetry.Infof("automation: %d markets -> %d BUY signals", len(snapshots), summary.BuySignals)

	for _, d := range decisions {
		if d.Signal != engine.SignalBuy {
			continue
		}
		r.processBuy(ctx, d, summary)
	}
	return summary
}

func (r *Runner) processBuy(ctx context.Context, d engine.Decision, summary *Summary) {
	m := d.Match
	detail := Detail{
		Favorite:    m.Favorite.Name,
		Underdog:    m.Underdog.Name,
		Tournament:  m.Tournament,
		MarketCents: m.MarketCents,
		TargetCents: d.TargetCents(),
		Ticker:      m.Ticker,
		EventTicker: m.EventTicker,
	}
	defer func() { summary.Details = append(summary.Details, detail) }()

	// A snapshot we can't key by event is never tradable: dedup would be
	// unsafe, so it is counted and dropped, not guessed at.
	if !m.Tradable() {
		detail.Action = "skipped_no_ticker"
		summary.SkippedNoTicker++
		telemetry.Metrics.ParseFailures.Inc()
		return
	}

	exists, err := r.orders.Exists(ctx, m.EventTicker)
	if err != nil {
		detail.Action = "ledger_error"
		summary.OrdersFailed++
		telemetry.Errorf("automation: dedup check for %s: %v", m.EventTicker, err)
		return
	}
	if exists {
		detail.Action = "already_ordered"
		summary.AlreadyOrdered++
		telemetry.Metrics.DedupHits.Inc()
		return
	}

	summary.H2HChecked++
	telemetry.Metrics.H2HChecks.Inc()
	result := r.headToHead(ctx, m.Favorite.Name, m.Underdog.Name, d)
	if result.Known {
		pct := result.WinPct
		detail.H2HWinPct = &pct
	}
	confirmed := r.policy.Confirms(result)
	detail.H2HConfirmed = &confirmed

	if !confirmed {
		detail.Action = "h2h_rejected"
		summary.H2HRejected++
		telemetry.Metrics.H2HRejections.Inc()
		r.writeRecord(ctx, d, detail, 0, ledger.StatusRejectedByH2H, "", summary)
		return
	}
	summary.H2HConfirmed++

	res := r.exec.Submit(ctx, m.Ticker, d.TargetCents(), r.contractsPerTrade)
	detail.Action = "order_" + string(res.Status)
	if res.Status == ledger.StatusPlaced || res.Status == ledger.StatusSimulated {
		summary.OrdersPlaced++
		r.totalOrders++
	} else {
		summary.OrdersFailed++
	}

	r.writeRecord(ctx, d, detail, res.Count, res.Status, res.Raw(), summary)
}

// headToHead consults the oracle with its own timeout. Any failure is the
// same as no opinion: the policy fails closed on unknown.
func (r *Runner) headToHead(ctx context.Context, favorite, underdog string, d engine.Decision) confirm.Result {
	ctx, cancel := context.WithTimeout(ctx, r.oracleTimeout)
	defer cancel()

	start := time.Now()
	result, err := r.oracle.HeadToHead(ctx, favorite, underdog, d.Match.Tier)
	telemetry.Metrics.OracleLatency.Record(time.Since(start))
	if err != nil {
		telemetry.Warnf("automation: h2h lookup %s vs %s: %v", favorite, underdog, err)
		return confirm.Unknown()
	}
	return result
}

func (r *Runner) writeRecord(ctx context.Context, d engine.Decision, detail Detail,
	contracts int, status ledger.Status, response string, summary *Summary) {
	m := d.Match
	rec := ledger.Record{
		EventTicker: m.EventTicker,
		Ticker:      m.Ticker,
		Favorite:    m.Favorite.Name,
		Underdog:    m.Underdog.Name,
		Tournament:  m.Tournament,
		TargetCents: d.TargetCents(),
		Contracts:   contracts,
		MarketCents: m.MarketCents,
		H2HWinPct:   detail.H2HWinPct,
		DryRun:      r.exec.DryRun(),
		Status:      status,
		PlacedAt:    time.Now().UTC(),
		Response:    response,
	}

	inserted, err := r.orders.Insert(ctx, rec)
	if err != nil {
		// The order may have gone out; never pretend otherwise.
		telemetry.Errorf("automation: LEDGER WRITE FAILED for %s (status=%s): %v",
			m.EventTicker, status, err)
		summary.OrdersFailed++
		return
	}
	if !inserted {
		telemetry.Warnf("automation: lost insert race for %s", m.EventTicker)
		return
	}

	if r.bus != nil && status != ledger.StatusRejectedByH2H {
		r.bus.Publish(events.Event{
			Type:      events.EventOrderPlaced,
			Timestamp: time.Now(),
			Payload: events.OrderPlacedEvent{
				EventTicker: m.EventTicker,
				Ticker:      m.Ticker,
				Favorite:    m.Favorite.Name,
				Underdog:    m.Underdog.Name,
				TargetCents: d.TargetCents(),
				Contracts:   contracts,
				Status:      string(status),
				DryRun:      rec.DryRun,
			},
		})
	}
}
