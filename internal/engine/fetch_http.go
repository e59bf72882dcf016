package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// pageLimiter spaces out YouTube page fetches so a ranking run with several
// concurrent workers does not hammer the site into 429s.
var pageLimiter = rate.NewLimiter(rate.Every(250*time.Millisecond), 3)

const maxPageBytes = 4 * 1024 * 1024

// newFetchClient creates an HTTP client with proper settings for web scraping.
func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			TLSHandshakeTimeout: 15 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// FetchPage downloads a YouTube HTML page, preferring the stealth browser
// client when configured and falling back to a plain retried GET.
func FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	IncrFetch()
	if err := pageLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	if cfg.BrowserClient != nil {
		data, _, status, err := cfg.BrowserClient.Do("GET", pageURL, ChromeHeaders(), nil)
		if err == nil && status == http.StatusOK {
			return data, nil
		}
		slog.Debug("fetch: browser client failed, falling back to plain HTTP",
			slog.String("url", pageURL), slog.Int("status", status), slog.Any("error", err))
	}

	resp, err := fetchWithRetry(ctx, pageURL)
	if err != nil {
		IncrFetchError()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		IncrFetchError()
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	return body, nil
}

// fetchWithRetry performs an HTTP GET with retry logic using exponential backoff.
func fetchWithRetry(ctx context.Context, fetchURL string) (*http.Response, error) {
	client := newFetchClient()

	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept-Encoding", "gzip, deflate")

		resp, err := client.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if IsRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(io.LimitReader(gz, maxPageBytes))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}
