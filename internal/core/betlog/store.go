package betlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charleschow/tennis-trading/internal/core/market"
	"github.com/charleschow/tennis-trading/internal/telemetry"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

var (
	ErrCompleted  = errors.New("bet already completed")
	ErrBadOutcome = errors.New("invalid match outcome")
)

// Bet is one tracked pick. Outcome-phase fields (Contracts, LowestCents,
// Winner, Outcome) are only meaningful once Status is completed.
type Bet struct {
	ID          int64          `json:"id"`
	EventTicker string         `json:"event_ticker,omitempty"`
	Favorite    string         `json:"player_fav"`
	Underdog    string         `json:"player_dog"`
	Tournament  string         `json:"tournament"`
	Tier        market.Tier    `json:"tournament_level"`
	Surface     market.Surface `json:"surface"`
	FavProb     float64        `json:"fav_probability"`
	MarketCents int            `json:"market_cents"`
	TargetCents int            `json:"target_cents"`
	TrackedAt   time.Time      `json:"tracked_at"`
	Status      string         `json:"status"`

	Contracts   int      `json:"contracts,omitempty"`
	LowestCents int      `json:"lowest_price_reached,omitempty"`
	Winner      Winner   `json:"match_outcome,omitempty"`
	Outcome     *Outcome `json:"outcome,omitempty"`
}

// Store wraps the tracked_bets table: insert on Track, a single in-place
// update on RecordOutcome, nothing else ever mutates a row.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `CREATE TABLE IF NOT EXISTS tracked_bets (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	event_ticker    TEXT,
	player_fav      TEXT    NOT NULL,
	player_dog      TEXT    NOT NULL,
	tournament      TEXT    NOT NULL,
	tournament_level TEXT   NOT NULL,
	surface         TEXT    NOT NULL,
	fav_probability REAL    NOT NULL,
	market_cents    INTEGER NOT NULL,
	target_cents    INTEGER NOT NULL,
	tracked_at      TEXT    NOT NULL,

	contracts            INTEGER,
	lowest_price_reached INTEGER,
	match_outcome        TEXT,
	order_filled         INTEGER,
	fill_price           INTEGER,
	edge                 INTEGER,
	pnl                  REAL,

	status          TEXT    NOT NULL DEFAULT 'pending'
);`

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bet log dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bet log schema: %w", err)
	}

	var rows int64
	db.QueryRow(`SELECT COUNT(*) FROM tracked_bets`).Scan(&rows)
	telemetry.Plainf("bet log: opened %s  rows=%d", path, rows)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Track inserts the snapshot half of a bet and returns it as pending.
func (s *Store) Track(ctx context.Context, b Bet) (*Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.TrackedAt.IsZero() {
		b.TrackedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tracked_bets
		(event_ticker, player_fav, player_dog, tournament, tournament_level,
		 surface, fav_probability, market_cents, target_cents, tracked_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		b.EventTicker, b.Favorite, b.Underdog, b.Tournament, string(b.Tier),
		string(b.Surface), b.FavProb, b.MarketCents, b.TargetCents,
		b.TrackedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("track bet: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("track bet id: %w", err)
	}
	return s.getLocked(ctx, id)
}

// RecordOutcome fills in the outcome half and flips the bet to completed.
// The transition is one-way: a completed bet rejects further updates.
func (s *Store) RecordOutcome(ctx context.Context, id int64, lowestCents int, winner Winner, contracts int) (*Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, err := s.getLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}
	if bet.Status == StatusCompleted {
		return nil, fmt.Errorf("bet %d: %w", id, ErrCompleted)
	}
	if winner != WinnerFavorite && winner != WinnerUnderdog {
		return nil, fmt.Errorf("%w: %q", ErrBadOutcome, winner)
	}

	out := Derive(bet.TargetCents, lowestCents, winner, contracts)
	filled := 0
	if out.Filled {
		filled = 1
	}
	pnl, _ := out.PnL.Float64()
	_, err = s.db.ExecContext(ctx, `UPDATE tracked_bets
		SET contracts = ?, lowest_price_reached = ?, match_outcome = ?,
		    order_filled = ?, fill_price = ?, edge = ?, pnl = ?,
		    status = 'completed'
		WHERE id = ? AND status = 'pending'`,
		contracts, lowestCents, string(winner),
		filled, out.FillCents, out.EdgeCents, pnl, id)
	if err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	return s.getLocked(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (*Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(ctx, id)
}

const betColumns = `id, COALESCE(event_ticker, ''), player_fav, player_dog,
	tournament, tournament_level, surface, fav_probability, market_cents,
	target_cents, tracked_at, status, contracts, lowest_price_reached,
	match_outcome, order_filled, fill_price, edge, pnl`

func (s *Store) getLocked(ctx context.Context, id int64) (*Bet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+betColumns+` FROM tracked_bets WHERE id = ?`, id)
	bet, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bet %d: %w", id, err)
	}
	return bet, nil
}

// All returns bets newest first; statusFilter "" means everything.
func (s *Store) All(ctx context.Context, statusFilter string) ([]Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT ` + betColumns + ` FROM tracked_bets ORDER BY tracked_at DESC, id DESC`
	args := []any{}
	if statusFilter != "" {
		query = `SELECT ` + betColumns + ` FROM tracked_bets WHERE status = ? ORDER BY tracked_at DESC, id DESC`
		args = append(args, statusFilter)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, *bet)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(r rowScanner) (*Bet, error) {
	var b Bet
	var tier, surface, trackedAt string
	var contracts, lowest, filled, fillPrice, edge sql.NullInt64
	var outcome sql.NullString
	var pnl sql.NullFloat64

	err := r.Scan(&b.ID, &b.EventTicker, &b.Favorite, &b.Underdog, &b.Tournament,
		&tier, &surface, &b.FavProb, &b.MarketCents, &b.TargetCents,
		&trackedAt, &b.Status, &contracts, &lowest, &outcome, &filled,
		&fillPrice, &edge, &pnl)
	if err != nil {
		return nil, err
	}

	b.Tier = market.Tier(tier)
	b.Surface = market.Surface(surface)
	b.TrackedAt, _ = time.Parse(time.RFC3339, trackedAt)

	if b.Status == StatusCompleted {
		b.Contracts = int(contracts.Int64)
		b.LowestCents = int(lowest.Int64)
		b.Winner = Winner(outcome.String)
		b.Outcome = &Outcome{
			Filled:    filled.Int64 == 1,
			FillCents: int(fillPrice.Int64),
			EdgeCents: int(edge.Int64),
			PnL:       decimal.NewFromFloat(pnl.Float64).Round(2),
		}
	}
	return &b, nil
}
