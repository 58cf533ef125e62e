package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// marketTimeResponse is the subset of the market-status payload we read
type marketTimeResponse struct {
	Status string `json:"status"`
}

// IsOpen probes the live US market status. Anything other than an explicit
// "open" counts as closed, which covers holidays and unscheduled halts the
// clock window alone cannot see.
func (c *Client) IsOpen(ctx context.Context) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v6/finance/markettime?region=US", c.queryBaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return false, fmt.Errorf("market status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload marketTimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode market status: %w", err)
	}

	open := strings.EqualFold(payload.Status, "open")

	c.logger.WithFields(map[string]interface{}{
		"status": payload.Status,
		"open":   open,
	}).Debug("Market status probed")

	return open, nil
}
