package geocode

import (
	"context"
	"delivery-route-console/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	maxAttempts  = 4
	firstBackoff = 200 * time.Millisecond
	// Upper bound for a server-suggested Retry-After wait.
	maxBackoff = 5 * time.Second
)

// orsStatusError is a non-2xx answer from ORS. retryAfter is the wait the
// server asked for on 429, zero when it gave none.
type orsStatusError struct {
	code       int
	body       string
	retryAfter time.Duration
}

func (e *orsStatusError) Error() string {
	return fmt.Sprintf("ors status %d: %s", e.code, e.body)
}

// temporary reports whether the same query may succeed later: rate limits and
// gateway-side failures. 4xx answers about the query itself are final.
func (e *orsStatusError) temporary() bool {
	switch e.code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// getJSON runs a GET against the ORS API and decodes the body into out.
// Geocoding is read-only, so every failed attempt that may be temporary is
// retried with exponential backoff until ctx is done.
func (o *ORSGeocoder) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := o.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	backoff := firstBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := o.getOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err

		wait, retry := retryDelay(err, backoff)
		if !retry || attempt == maxAttempts {
			return lastErr
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return lastErr
}

func (o *ORSGeocoder) getOnce(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set(obs.RequestIDHeader, id)
	}

	resp, err := o.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &orsStatusError{
			code:       resp.StatusCode,
			body:       strings.TrimSpace(string(b)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryDelay decides whether err is worth another attempt and how long to wait.
func retryDelay(err error, backoff time.Duration) (time.Duration, bool) {
	var se *orsStatusError
	if errors.As(err, &se) {
		if !se.temporary() {
			return 0, false
		}
		if se.retryAfter > 0 {
			return min(se.retryAfter, maxBackoff), true
		}
		return backoff, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return backoff, true
	}
	return 0, false
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
