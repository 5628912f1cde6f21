package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-curator/app/apperr"
)

// Fetcher downloads and parses a single feed URL. It makes exactly one
// request per call and never retries.
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Fetch returns the normalized items of the feed at url. Every failure is an
// apperr fetch error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Item, error) {
	if url == "" {
		return nil, apperr.Fetch(url, fmt.Errorf("feed URL is empty"))
	}

	data, err := f.fetchFeed(ctx, url)
	if err != nil {
		return nil, apperr.Fetch(url, err)
	}

	_, items, err := f.parser.Run(data)
	if err != nil {
		return nil, apperr.Fetch(url, err)
	}

	return items, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
