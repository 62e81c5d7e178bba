package automation

import (
	"context"

	"github.com/charleschow/tennis-trading/internal/core/execution"
	"github.com/charleschow/tennis-trading/internal/core/market"
)

// SnapshotProvider returns the currently open matches. Best effort: a
// partial provider outage yields whatever subset succeeded, and an empty
// slice is a valid answer.
type SnapshotProvider interface {
	FetchOpenMatches(ctx context.Context) ([]market.Snapshot, error)
}

// OrderSubmitter is the execution service's surface as the loop sees it.
type OrderSubmitter interface {
	Submit(ctx context.Context, ticker string, priceCents, count int) execution.Result
	DryRun() bool
}
