// Package taxapi is the HTTP client for the external tax-recalculation
// service. When discounts change, each line's surcharge components are
// recomputed server-side from the discount-to-price ratios.
package taxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"order-desk/internal/core"
)

// Client implements core.TaxRecalculator over HTTP JSON.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type recalcRequest struct {
	Lines []core.TaxRecalcLine `json:"lines"`
}

type recalcResponse struct {
	Lines []core.TaxRecalcResult `json:"lines"`
}

// Recalculate posts the cart's discount ratios and returns the updated
// per-line surcharges. Errors are retryable; the caller leaves the cart
// unmodified on failure.
func (c *Client) Recalculate(ctx context.Context, lines []core.TaxRecalcLine) ([]core.TaxRecalcResult, error) {
	body, err := json.Marshal(recalcRequest{Lines: lines})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tax recalculation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recalculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tax recalculation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tax recalculation call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tax recalculation returned HTTP %d: %s", resp.StatusCode, string(b))
	}

	var out recalcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode tax recalculation response: %w", err)
	}
	return out.Lines, nil
}
