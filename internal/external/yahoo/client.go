// Package yahoo talks to Yahoo Finance: the live market-status probe and the
// top-gainers screener, with an HTML scrape of the public gainers page as a
// fallback when the screener API is unavailable.
package yahoo

import (
	"golang.org/x/time/rate"

	"github.com/wonny/topgainers/pkg/config"
	"github.com/wonny/topgainers/pkg/httputil"
	"github.com/wonny/topgainers/pkg/logger"
)

// Client handles communication with Yahoo Finance
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	queryBaseURL  string
	scrapeBaseURL string
	userAgent     string

	filters config.ScreenerConfig

	// Yahoo throttles aggressively; bound our own request rate
	limiter *rate.Limiter
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	rps := cfg.Yahoo.RateLimit
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		httpClient:    httpClient,
		logger:        log,
		queryBaseURL:  cfg.Yahoo.QueryBaseURL,
		scrapeBaseURL: cfg.Yahoo.ScrapeBaseURL,
		userAgent:     cfg.Yahoo.UserAgent,
		filters:       cfg.Screener,
		limiter:       rate.NewLimiter(rate.Limit(rps), rps),
	}
}
