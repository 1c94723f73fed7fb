// Package scoring calls the external compatibility oracle. The engine treats
// it as a black box: a failed call means "unknown", and callers decide
// whether to retry on a later run.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tablemate-app/tablemate/internal/models"
)

// Client is an HTTP PairScorer against the vendor scoring API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client with a conservative per-call timeout; the vendor
// endpoint is slow and rate limited.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type scoreRequest struct {
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
}

type scoreResponse struct {
	Score int `json:"score"`
}

// Score asks the oracle for the compatibility of a and b.
func (c *Client) Score(ctx context.Context, a, b models.User) (int, error) {
	body, err := json.Marshal(scoreRequest{UserA: a.ID.String(), UserB: b.ID.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("score call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return 0, fmt.Errorf("score call returned %d: %s", resp.StatusCode, msg)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode score response: %w", err)
	}
	if out.Score < 0 {
		return 0, fmt.Errorf("oracle returned invalid score %d", out.Score)
	}
	return out.Score, nil
}
