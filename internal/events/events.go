package events

import "time"

// Event is the envelope that flows through the in-process bus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// EventCycleComplete carries the finished cycle's automation.Summary.
	EventCycleComplete EventType = "cycle_complete"
	// EventOrderPlaced carries an OrderPlacedEvent for each ledger write
	// that represents a live or simulated submission.
	EventOrderPlaced EventType = "order_placed"
)

// OrderPlacedEvent is published after the ledger accepts an order record.
type OrderPlacedEvent struct {
	EventTicker string `json:"event_ticker"`
	Ticker      string `json:"ticker"`
	Favorite    string `json:"player_fav"`
	Underdog    string `json:"player_dog"`
	TargetCents int    `json:"target_cents"`
	Contracts   int    `json:"contracts"`
	Status      string `json:"status"`
	DryRun      bool   `json:"dry_run"`
}
