package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// scrapeGainers extracts symbols from the public gainers page. Used only as
// a fallback; the page layout is less stable than the screener API, so this
// keys off quote links rather than table styling.
func (c *Client) scrapeGainers(ctx context.Context) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	pageURL := fmt.Sprintf("%s/markets/stocks/gainers", c.scrapeBaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("gainers page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse gainers page: %w", err)
	}

	seen := make(map[string]struct{})
	symbols := make([]string, 0, c.filters.Limit)

	doc.Find("table tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		symbol := symbolFromRow(row)
		if symbol == "" {
			return true
		}
		if _, ok := seen[symbol]; ok {
			return true
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
		return len(symbols) < c.filters.Limit
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols found on gainers page")
	}

	c.logger.WithField("count", len(symbols)).Debug("Scraped top gainers from page")

	return symbols, nil
}

// symbolFromRow pulls the ticker out of the row's quote link, e.g.
// href="/quote/AAA?p=AAA" yields "AAA"
func symbolFromRow(row *goquery.Selection) string {
	href, ok := row.Find(`a[href*="/quote/"]`).First().Attr("href")
	if !ok {
		return ""
	}

	rest := href[strings.Index(href, "/quote/")+len("/quote/"):]
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}

	return strings.ToUpper(strings.TrimSpace(rest))
}
