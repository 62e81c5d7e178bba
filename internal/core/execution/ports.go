package execution

import "context"

// Order is a limit YES buy: price in cents (1–99), each contract pays $1.
type Order struct {
	Ticker     string `json:"ticker"`
	PriceCents int    `json:"yes_price"`
	Count      int    `json:"count"`
	ClientID   string `json:"client_order_id"`
}

// OrderPlacer abstracts the exchange write path. Satisfied by
// *kalshi_http.Client. Implementations return an error only for transport
// failures; an exchange rejection comes back as a Result with StatusFailed.
type OrderPlacer interface {
	PlaceLimitOrder(ctx context.Context, ord Order) (Result, error)
}
