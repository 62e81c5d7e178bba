// Package ledger persists one terminal record per traded event. The table
// is append-only: rows are never updated or deleted, and the presence of
// any row for an event ticker blocks further action on that event.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/tennis-trading/internal/telemetry"

	_ "modernc.org/sqlite"
)

type Status string

const (
	StatusSimulated     Status = "simulated"
	StatusPlaced        Status = "placed"
	StatusFailed        Status = "failed"
	StatusError         Status = "error"
	StatusRejectedByH2H Status = "rejected_by_h2h"
)

// Record is one terminal outcome for an event. H2HWinPct is nil when the
// oracle had no opinion.
type Record struct {
	ID          int64
	EventTicker string
	Ticker      string
	Favorite    string
	Underdog    string
	Tournament  string
	TargetCents int
	Contracts   int
	MarketCents int
	H2HWinPct   *float64
	DryRun      bool
	Status      Status
	PlacedAt    time.Time
	Response    string
}

// Store wraps the placed_orders SQLite table. A single connection plus the
// mutex makes the exists-then-insert dedup check a critical section.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `CREATE TABLE IF NOT EXISTS placed_orders (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	event_ticker  TEXT    NOT NULL,
	ticker        TEXT    NOT NULL,
	player_fav    TEXT    NOT NULL,
	player_dog    TEXT    NOT NULL,
	tournament    TEXT,
	target_cents  INTEGER NOT NULL,
	contracts     INTEGER NOT NULL,
	market_cents  INTEGER NOT NULL,
	h2h_win_pct   REAL,
	dry_run       INTEGER NOT NULL DEFAULT 1,
	status        TEXT    NOT NULL,
	placed_at     TEXT    NOT NULL,
	order_response TEXT
);
CREATE INDEX IF NOT EXISTS idx_po_event ON placed_orders(event_ticker);`

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init order ledger schema: %w", err)
	}

	var rows int64
	db.QueryRow(`SELECT COUNT(*) FROM placed_orders`).Scan(&rows)
	telemetry.Plainf("order ledger: opened %s  rows=%d", path, rows)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Exists reports whether any record — whatever its status — was already
// written for the event.
func (s *Store) Exists(ctx context.Context, eventTicker string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsLocked(ctx, s.db, eventTicker)
}

func (s *Store) existsLocked(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, eventTicker string) (bool, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM placed_orders WHERE event_ticker = ? LIMIT 1`, eventTicker).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger exists check: %w", err)
	}
	return true, nil
}

// Insert writes the record unless a record for its event already exists.
// Check and insert run under one transaction; returns false when another
// record won the race.
func (s *Store) Insert(ctx context.Context, rec Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ledger begin: %w", err)
	}
	defer tx.Rollback()

	exists, err := s.existsLocked(ctx, tx, rec.EventTicker)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	dryRun := 0
	if rec.DryRun {
		dryRun = 1
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO placed_orders
		(event_ticker, ticker, player_fav, player_dog, tournament,
		 target_cents, contracts, market_cents, h2h_win_pct,
		 dry_run, status, placed_at, order_response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.EventTicker, rec.Ticker, rec.Favorite, rec.Underdog, rec.Tournament,
		rec.TargetCents, rec.Contracts, rec.MarketCents, rec.H2HWinPct,
		dryRun, string(rec.Status), rec.PlacedAt.UTC().Format(time.RFC3339), rec.Response)
	if err != nil {
		return false, fmt.Errorf("ledger insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("ledger commit: %w", err)
	}
	return true, nil
}

// All returns up to limit records, newest first.
func (s *Store) All(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 200
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT
		id, event_ticker, ticker, player_fav, player_dog,
		COALESCE(tournament, ''), target_cents, contracts, market_cents,
		h2h_win_pct, dry_run, status, placed_at, COALESCE(order_response, '')
		FROM placed_orders ORDER BY placed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var dryRun int
		var placedAt, status string
		if err := rows.Scan(&rec.ID, &rec.EventTicker, &rec.Ticker, &rec.Favorite,
			&rec.Underdog, &rec.Tournament, &rec.TargetCents, &rec.Contracts,
			&rec.MarketCents, &rec.H2HWinPct, &dryRun, &status, &placedAt,
			&rec.Response); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		rec.DryRun = dryRun == 1
		rec.Status = Status(status)
		rec.PlacedAt, _ = time.Parse(time.RFC3339, placedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
