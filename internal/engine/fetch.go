package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// StatusCodeError reports the last upstream status observed by the fetch
// layer, so callers can forward it instead of guessing.
type StatusCodeError struct {
	Code int
}

func (e *StatusCodeError) Error() string { return fmt.Sprintf("status %d", e.Code) }

// Fetch performs an HTTP GET with exponential backoff.
// Retryable statuses (429, 5xx) and transport errors are retried; any other
// response is returned as-is with the body open so callers can inspect the
// status and payload. Header entries override the defaults; a User-Agent is
// filled in when the caller did not set one.
func Fetch(ctx context.Context, fetchURL string, header http.Header) (*http.Response, error) {
	metrics.FetchRequests.Add(1)

	operation := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", RandomUserAgent())
		}
		req.Header.Set("Accept-Encoding", "gzip, deflate")

		resp, err := cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if IsRetryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return nil, &StatusCodeError{Code: resp.StatusCode}
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(3),
		backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		metrics.FetchErrors.Add(1)
	}
	return resp, err
}

// FetchBody GETs fetchURL under the configured fetch timeout and returns the
// body bytes of a 200 response. Any other status is an error.
func FetchBody(ctx context.Context, fetchURL string, header http.Header) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := Fetch(ctx, fetchURL, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.Add(1)
		return nil, &StatusCodeError{Code: resp.StatusCode}
	}
	return ReadResponseBody(resp)
}

// ReadResponseBody reads a response body capped at MaxBodyBytes, handling
// gzip decompression if needed.
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, int64(cfg.MaxBodyBytes)))
}
