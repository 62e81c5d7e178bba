// Package matchstat answers head-to-head queries from the Matchstat
// tennis API on RapidAPI. It satisfies confirm.Oracle; without an API
// key it degrades to "no opinion" instead of failing, which the policy
// then rejects fail-closed.
package matchstat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charleschow/tennis-trading/internal/core/cache"
	"github.com/charleschow/tennis-trading/internal/core/confirm"
	"github.com/charleschow/tennis-trading/internal/core/market"
	"github.com/charleschow/tennis-trading/internal/telemetry"
)

type Client struct {
	apiKey     string
	host       string
	httpClient *http.Client

	// Head-to-head records change only when the pair actually plays;
	// an hour of caching removes nearly all repeat lookups per cycle.
	results *cache.TTL[string, confirm.Result]

	warnOnce sync.Once
}

func NewClient(apiKey, host string) *Client {
	return &Client{
		apiKey:     apiKey,
		host:       host,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		results:    cache.NewTTL[string, confirm.Result](time.Hour, 512),
	}
}

type h2hResponse struct {
	Data struct {
		MatchesCount int `json:"matchesCount"`
		Player1Stats struct {
			Wins int `json:"wins"`
		} `json:"player1Stats"`
		Player2Stats struct {
			Wins int `json:"wins"`
		} `json:"player2Stats"`
	} `json:"data"`
}

// HeadToHead returns the favorite's historical win fraction against the
// underdog. Expected gaps (no key, unresolvable player, empty record)
// come back as Unknown; only transport failures surface as errors.
func (c *Client) HeadToHead(ctx context.Context, favorite, underdog string, tier market.Tier) (confirm.Result, error) {
	if c.apiKey == "" {
		c.warnOnce.Do(func() {
			telemetry.Warnf("matchstat: no API key configured, every h2h check returns no opinion")
		})
		return confirm.Unknown(), nil
	}

	favID, ok := findPlayerID(favorite)
	if !ok {
		telemetry.Debugf("matchstat: unknown player %q", favorite)
		return confirm.Unknown(), nil
	}
	dogID, ok := findPlayerID(underdog)
	if !ok {
		telemetry.Debugf("matchstat: unknown player %q", underdog)
		return confirm.Unknown(), nil
	}

	tour := "atp"
	if tier == market.TierSecondary {
		tour = "wta"
	}
	key := fmt.Sprintf("%s:%d:%d", tour, favID, dogID)
	if r, ok := c.results.Get(key); ok {
		return r, nil
	}

	resp, err := c.fetch(ctx, tour, favID, dogID)
	if err != nil {
		return confirm.Unknown(), err
	}

	r := confirm.Unknown()
	if n := resp.Data.MatchesCount; n > 0 {
		r = confirm.Result{
			WinPct:  float64(resp.Data.Player1Stats.Wins) / float64(n),
			Matches: n,
			Known:   true,
		}
	}
	c.results.Put(key, r)
	return r, nil
}

func (c *Client) fetch(ctx context.Context, tour string, favID, dogID int) (*h2hResponse, error) {
	url := fmt.Sprintf("https://%s/tennis/v2/%s/h2h/%d/%d", c.host, tour, favID, dogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("h2h endpoint: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed h2hResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal h2h: %w", err)
	}
	return &parsed, nil
}
