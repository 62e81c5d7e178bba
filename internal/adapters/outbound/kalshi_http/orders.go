package kalshi_http

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charleschow/tennis-trading/internal/core/execution"
	"github.com/charleschow/tennis-trading/internal/core/ledger"
	"github.com/charleschow/tennis-trading/internal/telemetry"
)

// createOrderRequest is the payload for POST /trade-api/v2/portfolio/orders.
type createOrderRequest struct {
	Ticker   string `json:"ticker"`
	Action   string `json:"action"` // always "buy"
	Side     string `json:"side"`   // always "yes"
	Type     string `json:"type"`   // always "limit"
	Count    int    `json:"count"`
	YesPrice int    `json:"yes_price"`
	ClientID string `json:"client_order_id,omitempty"`
}

type createOrderResponse struct {
	Order struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	} `json:"order"`
}

// PlaceLimitOrder rests a YES limit buy on the book. A transport failure
// returns an error; an exchange rejection (non-2xx) comes back as a
// Result with StatusFailed so the caller records it rather than retries.
func (c *Client) PlaceLimitOrder(ctx context.Context, ord execution.Order) (execution.Result, error) {
	req := createOrderRequest{
		Ticker:   ord.Ticker,
		Action:   "buy",
		Side:     "yes",
		Type:     "limit",
		Count:    ord.Count,
		YesPrice: ord.PriceCents,
		ClientID: ord.ClientID,
	}

	body, status, err := c.Post(ctx, "/trade-api/v2/portfolio/orders", req)
	if err != nil {
		return execution.Result{}, err
	}
	if status < 200 || status >= 300 {
		telemetry.Warnf("kalshi: order rejected ticker=%s status=%d body=%s",
			ord.Ticker, status, string(body))
		return execution.Result{
			Status: ledger.StatusFailed,
			Error:  fmt.Sprintf("kalshi: status=%d body=%s", status, string(body)),
		}, nil
	}

	var resp createOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return execution.Result{}, fmt.Errorf("unmarshal order response: %w", err)
	}

	return execution.Result{
		Status:  ledger.StatusPlaced,
		OrderID: resp.Order.OrderID,
	}, nil
}
