package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"net/http"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
	// RetryAfter is the backend's Retry-After hint, capped at maxRetryAfter.
	RetryAfter time.Duration

	hasRetryAfter bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Unwrap lets callers match a 422 with errors.Is(err, domain.ErrUnprocessable).
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnprocessableEntity {
		return domain.ErrUnprocessable
	}
	return nil
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func (c *Client) newRequest(
	ctx context.Context,
	method string,
	path string,
	body any,
) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		r = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := obs.RequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.session.Do(req)
	if err != nil {
		c.observe(req, 0, start)
		return nil, err
	}
	c.observe(req, resp.StatusCode, start)

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		se := &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
		se.RetryAfter, se.hasRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, se
	}
	return resp, nil
}

func (c *Client) observe(req *http.Request, code int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveBackend(req.Method, req.URL.Path, code, time.Since(start))
	}
}

// maxRetryAfter bounds how long a Retry-After hint may stall a read.
const maxRetryAfter = 5 * time.Second

// retryable reports whether a failed read is worth another attempt and how
// long the backend asked us to wait, if it said.
func retryable(err error) (ok bool, hint time.Duration, hinted bool) {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true, se.RetryAfter, se.hasRetryAfter
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
			return true, 0, false
		}
		return false, 0, false
	}
	var netErr net.Error
	return errors.As(err, &netErr), 0, false
}

// parseRetryAfter reads delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(min(secs, int(maxRetryAfter/time.Second))) * time.Second, true
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	return min(max(t.Sub(now), 0), maxRetryAfter), true
}

// doWithRetry sends a read until it succeeds, fails permanently or runs
// out of attempts. The wait between attempts doubles from retryBackoff
// unless the backend sent Retry-After. Writes never come through here.
func (c *Client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	reqID := obs.RequestID(ctx)
	wait := c.retryBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}

		again, hint, hinted := retryable(err)
		if !again || attempt >= c.maxAttempts {
			return nil, err
		}
		pause := wait
		if hinted {
			pause = hint
		}
		log.Printf(
			"req_id=%s backend retry method=%s path=%s attempt=%d/%d wait=%s err=%v",
			reqID, req.Method, req.URL.Path, attempt, c.maxAttempts, pause, err,
		)

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

// getJSON issues a retried GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode GET %s: %w", path, err)
	}
	return nil
}

// send issues a single write. out may be nil when the body is not needed.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// flexInt decodes a JSON number, a numeric string or null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decode integer %s: %w", b, err)
	}
	// 1<<63 is exact as a float64; anything at or past it would wrap.
	if v != math.Trunc(v) || v < math.MinInt64 || v >= 1<<63 {
		return fmt.Errorf("decode integer %s: not a whole number in range", b)
	}
	*f = flexInt(v)
	return nil
}

// flexFloat is flexInt for decimal columns such as distance_from_start.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decode number %s: %w", b, err)
	}
	*f = flexFloat(v)
	return nil
}
