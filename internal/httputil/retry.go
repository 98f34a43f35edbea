// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil fetches remote knowledge base documents.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// throttled responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = time.Second

const defaultMaxRetries = 5

// ErrStatus is wrapped by Fetch errors for non-2xx responses.
var ErrStatus = errors.New("unexpected HTTP status")

// retryable reports whether a response status asks the client to come back
// later.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// backoff returns how long to wait before the next attempt. A Retry-After
// header given in seconds takes precedence over the exponential schedule.
func backoff(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}

// DoWithRetry executes req and retries on HTTP 429 and 503 with exponential
// backoff starting at RetryBaseDelay.
//
// When maxRetries is 0 the default (5) is used. The body of each throttled
// response is drained and closed before sleeping. If ctx is cancelled during
// a wait the function returns ctx.Err(). After exhausting retries the last
// throttled response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		wait := backoff(resp, attempt)
		logger.Info("throttled, retrying",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Fetcher downloads documents over HTTP(S).
type Fetcher struct {
	Client     *http.Client
	MaxRetries int
	UserAgent  string
	Logger     *zap.Logger
}

// Fetch GETs url and returns the response body. Responses outside the 2xx
// range fail with an error wrapping ErrStatus.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := DoWithRetry(ctx, client, req, f.MaxRetries, f.Logger)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: %w: %s", url, ErrStatus, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}
