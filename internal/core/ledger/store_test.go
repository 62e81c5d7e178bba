package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(event string, status Status) Record {
	return Record{
		EventTicker: event,
		Ticker:      event + "-FAV",
		Favorite:    "Jannik Sinner",
		Underdog:    "Gael Monfils",
		Tournament:  "ATP Rotterdam",
		TargetCents: 53,
		Contracts:   50,
		MarketCents: 75,
		DryRun:      true,
		Status:      status,
		PlacedAt:    time.Date(2026, 2, 21, 17, 0, 0, 0, time.UTC),
	}
}

func TestInsertDedup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, rec("EVT-1", StatusSimulated))
	if err != nil || !inserted {
		t.Fatalf("first insert = %v, %v", inserted, err)
	}

	// Second insert for the same event must lose, regardless of status.
	inserted, err = s.Insert(ctx, rec("EVT-1", StatusPlaced))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Fatal("duplicate event inserted")
	}

	all, err := s.All(ctx, 0)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d records, want 1", len(all))
	}
	if all[0].Status != StatusSimulated {
		t.Errorf("status = %s, want the first writer's", all[0].Status)
	}
}

func TestExists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "EVT-2")
	if err != nil || ok {
		t.Fatalf("Exists before insert = %v, %v", ok, err)
	}

	// A rejection blocks the event just like a fill would.
	if _, err := s.Insert(ctx, rec("EVT-2", StatusRejectedByH2H)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err = s.Exists(ctx, "EVT-2")
	if err != nil || !ok {
		t.Fatalf("Exists after insert = %v, %v", ok, err)
	}
}

func TestRoundTripFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := rec("EVT-3", StatusPlaced)
	winPct := 0.67
	r.H2HWinPct = &winPct
	r.DryRun = false
	r.Response = `{"order":{"order_id":"abc"}}`

	if _, err := s.Insert(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	all, err := s.All(ctx, 10)
	if err != nil || len(all) != 1 {
		t.Fatalf("all = %d records, %v", len(all), err)
	}
	got := all[0]
	if got.H2HWinPct == nil || *got.H2HWinPct != winPct {
		t.Errorf("h2h pct = %v", got.H2HWinPct)
	}
	if got.DryRun {
		t.Error("dry_run flipped on round trip")
	}
	if got.Response != r.Response || got.Ticker != r.Ticker || !got.PlacedAt.Equal(r.PlacedAt) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
