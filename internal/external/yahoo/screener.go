package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// operand is one node of the screener's operator tree
type operand struct {
	Operator string        `json:"operator"`
	Operands []interface{} `json:"operands"`
}

// screenerRequest is the screener query envelope
type screenerRequest struct {
	Size      int     `json:"size"`
	Offset    int     `json:"offset"`
	SortField string  `json:"sortField"`
	SortType  string  `json:"sortType"`
	QuoteType string  `json:"quoteType"`
	Query     operand `json:"query"`
}

// screenerResponse is the subset of the screener payload we read
type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"finance"`
}

// TopGainers returns the symbols currently matching the configured gainer
// filters, sorted by percent change. When the screener API fails it falls
// back to scraping the public gainers page; only a double failure surfaces
// an error.
func (c *Client) TopGainers(ctx context.Context) ([]string, error) {
	symbols, err := c.screen(ctx)
	if err == nil {
		return symbols, nil
	}

	c.logger.WithError(err).Warn("Screener API failed, falling back to page scrape")

	symbols, scrapeErr := c.scrapeGainers(ctx)
	if scrapeErr != nil {
		return nil, fmt.Errorf("screener failed (%v); scrape failed: %w", err, scrapeErr)
	}

	return symbols, nil
}

// screen runs the screener API query
func (c *Client) screen(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/finance/screener", c.queryBaseURL)

	resp, err := c.httpClient.PostJSON(ctx, apiURL, c.buildRequest())
	if err != nil {
		return nil, fmt.Errorf("screener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload screenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode screener response: %w", err)
	}

	if payload.Finance.Error != nil {
		return nil, fmt.Errorf("screener error: %s (%s)",
			payload.Finance.Error.Description, payload.Finance.Error.Code)
	}

	if len(payload.Finance.Result) == 0 {
		return nil, nil
	}

	quotes := payload.Finance.Result[0].Quotes
	symbols := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.Symbol != "" {
			symbols = append(symbols, q.Symbol)
		}
	}

	c.logger.WithField("count", len(symbols)).Debug("Fetched top gainers from screener")

	return symbols, nil
}

// buildRequest assembles the operator tree from the configured filters
func (c *Client) buildRequest() screenerRequest {
	f := c.filters

	elements := []interface{}{
		operand{Operator: "GT", Operands: []interface{}{"percentchange", f.MinPercentChange}},
		operand{Operator: "GTE", Operands: []interface{}{"intradayprice", f.MinPrice}},
		operand{Operator: "GT", Operands: []interface{}{"dayvolume", f.MinVolume}},
	}

	if f.USOnly {
		elements = append(elements, operand{Operator: "EQ", Operands: []interface{}{"region", "us"}})
	}

	if f.MinMarketCap > 0 {
		elements = append(elements, operand{Operator: "GTE", Operands: []interface{}{"intradaymarketcap", f.MinMarketCap}})
	}

	return screenerRequest{
		Size:      f.Limit,
		Offset:    0,
		SortField: "percentchange",
		SortType:  "DESC",
		QuoteType: "EQUITY",
		Query:     operand{Operator: "AND", Operands: elements},
	}
}
