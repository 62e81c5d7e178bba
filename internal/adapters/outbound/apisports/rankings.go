// Package apisports pulls ATP/WTA world rankings from api-sports.io so
// snapshots can carry a ranking gap. Rankings are a nicety, not a gate:
// every failure degrades to "unknown" and the model prices without them.
package apisports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charleschow/tennis-trading/internal/telemetry"
)

type RankingsClient struct {
	apiKey     string
	baseURL    string
	ttl        time.Duration
	httpClient *http.Client

	mu        sync.Mutex
	byName    map[string]int // lowercase player name -> ranking
	fetchedAt time.Time
}

func NewRankingsClient(apiKey, baseURL string, ttl time.Duration) *RankingsClient {
	return &RankingsClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		ttl:        ttl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		byName:     map[string]int{},
	}
}

// Ranking returns the player's world ranking, 0 when unknown. The table
// refreshes lazily once per TTL; a failed refresh keeps the stale table
// and waits out a full TTL before retrying rather than hammering the API.
func (c *RankingsClient) Ranking(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.apiKey == "" {
		return 0
	}
	if time.Since(c.fetchedAt) >= c.ttl {
		c.refreshLocked()
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if r, ok := c.byName[key]; ok {
		return r
	}
	// Surname fallback for short display names.
	last := key
	if i := strings.LastIndex(key, " "); i >= 0 {
		last = key[i+1:]
	}
	for known, r := range c.byName {
		if strings.HasSuffix(known, " "+last) {
			return r
		}
	}
	return 0
}

type rankingsResponse struct {
	Response []struct {
		Position int `json:"position"`
		Player   struct {
			Name string `json:"name"`
		} `json:"player"`
	} `json:"response"`
}

func (c *RankingsClient) refreshLocked() {
	c.fetchedAt = time.Now()

	table := map[string]int{}
	for _, tour := range []string{"atp", "wta"} {
		if err := c.fetchTour(tour, table); err != nil {
			telemetry.Warnf("apisports: refresh %s rankings: %v", tour, err)
		}
	}
	if len(table) == 0 {
		telemetry.Warnf("apisports: rankings refresh produced nothing, keeping %d stale entries", len(c.byName))
		return
	}
	c.byName = table
	telemetry.Infof("apisports: rankings refreshed, %d players", len(table))
}

func (c *RankingsClient) fetchTour(tour string, table map[string]int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/rankings?type=%s", c.baseURL, tour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("x-apisports-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed rankingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("unmarshal rankings: %w", err)
	}
	for _, row := range parsed.Response {
		if row.Player.Name == "" || row.Position <= 0 {
			continue
		}
		table[strings.ToLower(row.Player.Name)] = row.Position
	}
	return nil
}
