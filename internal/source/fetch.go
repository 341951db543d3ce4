package source

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go-agg-engine/internal/model"
)

// openSource returns a reader over the spec's URL: local file path or HTTP.
// HTTP fetches go through the bounded backoff retry below; local files are
// opened once. Retrying stops at this edge: a job that got its rows never
// retries anything internally.
func openSource(spec model.SourceSpec) (io.ReadCloser, error) {
	if spec.URL == "" {
		return nil, fmt.Errorf("source %q needs a url", spec.Type)
	}
	if strings.HasPrefix(spec.URL, "http") {
		retry := model.DefaultRetryConfig()
		if spec.Retry != nil {
			retry = *spec.Retry
		}
		return fetchWithRetry(spec.URL, retry)
	}
	file, err := os.Open(spec.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	return file, nil
}

// fetchWithRetry GETs the URL, backing off exponentially on retryable
// failures (network errors and 5xx). 4xx responses fail immediately.
func fetchWithRetry(url string, cfg model.RetryConfig) (io.ReadCloser, error) {
	delay := cfg.InitialDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			fmt.Printf("🔁 Retry %d/%d for %s after %v\n", attempt, cfg.MaxRetries, url, delay)
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		resp, err := http.Get(url)
		if err != nil {
			lastErr = fmt.Errorf("failed to GET %s: %w", url, err)
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("GET %s: server error %d", url, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}
		return resp.Body, nil
	}
	return nil, fmt.Errorf("giving up on %s after %d retries: %w", url, cfg.MaxRetries, lastErr)
}
