// Package rates fetches exchange rate snapshots from an external API.
// The currency package never performs network I/O itself; it only
// consumes the maps this client produces.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"finbook/internal/currency"
)

const defaultBaseURL = "https://api.exchangerate.host/latest"

// Client fetches a code-to-rate mapping keyed by a base currency.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a rate client. An empty baseURL selects the default
// public API endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch retrieves the current rate snapshot for the given base currency.
func (c *Client) Fetch(ctx context.Context, base string) (map[string]float64, error) {
	u := c.baseURL + "?base=" + url.QueryEscape(base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates response contained no rates")
	}

	return payload.Rates, nil
}

// Refresher periodically refreshes a rate table. Failed fetches are
// logged and skipped; the table keeps its previous snapshot.
type Refresher struct {
	client   *Client
	table    *currency.Table
	interval time.Duration
}

// NewRefresher wires a client to the table it should keep fresh.
func NewRefresher(client *Client, table *currency.Table, interval time.Duration) *Refresher {
	return &Refresher{client: client, table: table, interval: interval}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	base := r.table.Base()
	fetched, err := r.client.Fetch(ctx, base)
	if err != nil {
		slog.WarnContext(ctx, "Rate refresh failed, keeping previous table",
			"base", base,
			"error", err)
		return
	}
	r.table.Update(fetched)
	slog.InfoContext(ctx, "Rate table refreshed",
		"base", base,
		"currencies", len(fetched))
}
