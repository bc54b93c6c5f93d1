package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// FormRecord is one normalized form submission row: raw field values keyed
// by header, the original column order, and a stable row reference used as
// the sync idempotence key.
type FormRecord struct {
	RowRef string            `json:"rowRef"`
	Fields map[string]string `json:"fields"`
	Order  []string          `json:"order"`
}

// Client fetches published form rows over HTTP. The sheet side exposes a
// JSON feed (Apps Script web app); column mapping already happened there.
type Client struct {
	feedURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		feedURL: os.Getenv("SHEETS_FEED_URL"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchRows pulls every row currently in the feed.
func (c *Client) FetchRows(ctx context.Context) ([]FormRecord, error) {
	if c.feedURL == "" {
		return nil, fmt.Errorf("SHEETS_FEED_URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet feed returned %d", resp.StatusCode)
	}

	var payload struct {
		Rows []FormRecord `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding sheet feed: %w", err)
	}
	return payload.Rows, nil
}
