// Package execution submits the limit orders the decision loop approves.
// It clamps sizing, short-circuits in dry-run mode before any network
// call, and normalizes every outcome into a ledger-ready Result.
package execution

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charleschow/tennis-trading/internal/core/ledger"
	"github.com/charleschow/tennis-trading/internal/telemetry"
	"github.com/google/uuid"
)

// Result has the same shape for simulated and real submissions so the
// ledger schema and everything downstream is identical in both modes.
type Result struct {
	Status  ledger.Status `json:"status"`
	OrderID string        `json:"order_id,omitempty"`
	Ticker  string        `json:"ticker"`
	Price   int           `json:"yes_price"`
	Count   int           `json:"count"`
	DryRun  bool          `json:"dry_run"`
	Error   string        `json:"error,omitempty"`
}

// Raw renders the result as the ledger's order_response payload.
func (r Result) Raw() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

type Service struct {
	placer       OrderPlacer
	maxContracts int
	dryRun       bool
	timeout      time.Duration
}

// NewService wires the exchange client. placer may be nil when credentials
// are missing; live submissions then fail loudly instead of pretending.
func NewService(placer OrderPlacer, maxContracts int, dryRun bool) *Service {
	return &Service{
		placer:       placer,
		maxContracts: maxContracts,
		dryRun:       dryRun,
		timeout:      15 * time.Second,
	}
}

func (s *Service) DryRun() bool { return s.dryRun }

// Submit places (or simulates) a limit buy of count contracts at
// priceCents. Count is clamped to the per-order maximum first.
func (s *Service) Submit(ctx context.Context, ticker string, priceCents, count int) Result {
	if count > s.maxContracts {
		telemetry.Warnf("execution: clamping %d contracts to max %d for %s", count, s.maxContracts, ticker)
		count = s.maxContracts
	}

	if s.dryRun {
		telemetry.Infof("[DRY RUN] Would place: BUY %dx %s @ %d¢  (max cost: $%.2f | max payout: $%d)",
			count, ticker, priceCents, float64(count*priceCents)/100, count)
		return Result{
			Status: ledger.StatusSimulated,
			Ticker: ticker,
			Price:  priceCents,
			Count:  count,
			DryRun: true,
		}
	}

	if s.placer == nil {
		telemetry.Errorf("execution: live order requested for %s but no exchange credentials", ticker)
		return Result{
			Status: ledger.StatusError,
			Ticker: ticker,
			Price:  priceCents,
			Count:  count,
			Error:  "exchange credentials not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.placer.PlaceLimitOrder(ctx, Order{
		Ticker:     ticker,
		PriceCents: priceCents,
		Count:      count,
		ClientID:   uuid.NewString(),
	})
	if err != nil {
		telemetry.Errorf("execution: order error for %s: %v", ticker, err)
		return Result{
			Status: ledger.StatusError,
			Ticker: ticker,
			Price:  priceCents,
			Count:  count,
			Error:  err.Error(),
		}
	}

	res.Ticker = ticker
	res.Price = priceCents
	res.Count = count
	if res.Status == ledger.StatusPlaced {
		telemetry.Metrics.OrdersSent.Inc()
		telemetry.Infof("execution: order placed ticker=%s price=%d¢ count=%d -> %s",
			ticker, priceCents, count, res.OrderID)
	} else {
		telemetry.Metrics.OrderErrors.Inc()
		telemetry.Errorf("execution: order rejected ticker=%s: %s", ticker, res.Error)
	}
	return res
}
