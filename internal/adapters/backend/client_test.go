package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"route-itinerary-service/internal/domain"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, WithToken("secret"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.retryBackoff = time.Millisecond
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://example.com", "::"} {
		if _, err := NewClient(u); err == nil {
			t.Fatalf("NewClient(%q): expected error", u)
		}
	}
}

func TestCreateRouteLandmarkSendsDeltasAsStrings(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/route/landmark" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"31","route_id":7,"landmark_id":3,"sequence_id":2,"distance_from_start":"5000.00","arrival_delta":"4500","departure_delta":4800}`)
	}))

	rl, err := c.CreateRouteLandmark(context.Background(), 7, domain.LandmarkPlan{
		LandmarkID: 3, SequenceID: 2, DistanceFromStart: 5000, ArrivalDelta: 4500, DepartureDelta: 4800,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["arrival_delta"] != "4500" || got["departure_delta"] != "4800" {
		t.Fatalf("deltas not sent as strings: %v", got)
	}
	if got["route_id"] != float64(7) || got["sequence_id"] != float64(2) {
		t.Fatalf("body = %v", got)
	}

	want := domain.RouteLandmark{ID: 31, RouteID: 7, LandmarkID: 3, SequenceID: 2, DistanceFromStart: 5000, ArrivalDelta: 4500, DepartureDelta: 4800}
	if rl != want {
		t.Fatalf("got %+v, want %+v", rl, want)
	}
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))

	_, err := c.CreateRoute(context.Background(), "Route 9", "00:30:00Z")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("write attempted %d times, want 1", n)
	}
}

func TestReadsRetryTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		if r.URL.Query().Get("route_id") != "7" {
			t.Errorf("route_id = %q", r.URL.Query().Get("route_id"))
		}
		_, _ = io.WriteString(w, `[{"id":1,"route_id":7,"landmark_id":1,"sequence_id":1,"distance_from_start":0,"arrival_delta":"0","departure_delta":"0"}]`)
	}))

	rows, err := c.ListRouteLandmarks(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].RouteID != 7 {
		t.Fatalf("rows = %+v", rows)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestUnprocessableMapsToDomainError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"times must be after route start"}`, http.StatusUnprocessableEntity)
	}))

	err := c.UpdateRouteLandmark(context.Background(), domain.LandmarkUpdate{ID: 4, ArrivalDelta: 10, DepartureDelta: 20})
	if !errors.Is(err, domain.ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable, got %v", err)
	}
}

func TestGetRoute(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "7":
			_, _ = io.WriteString(w, `[{"id":7,"name":"Route 9","starting_time":"00:30:00Z"}]`)
		case "8":
			_, _ = io.WriteString(w, `{"id":8,"name":"Route 10","starting_time":"01:00:00Z"}`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	}))

	r, err := c.GetRoute(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (domain.Route{ID: 7, Name: "Route 9", StartingTime: "00:30:00Z"}) {
		t.Fatalf("route = %+v", r)
	}

	if r, err = c.GetRoute(context.Background(), 8); err != nil || r.Name != "Route 10" {
		t.Fatalf("route = %+v, err = %v", r, err)
	}

	if _, err := c.GetRoute(context.Background(), 9); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestUpdateRouteBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.UpdateRoute(context.Background(), domain.Route{ID: 7, Name: "Route 9", StartingTime: "01:00:00Z"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["start_time"] != "01:00:00Z" || got["id"] != float64(7) {
		t.Fatalf("body = %v", got)
	}
}

func TestFlexIntDecoding(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: `4500`, want: 4500},
		{in: `"4800"`, want: 4800},
		{in: `"7200.0"`, want: 7200},
		{in: `1.2e3`, want: 1200},
		{in: `null`, want: 0},
		{in: `"12.7"`, wantErr: true},
		{in: `1e30`, wantErr: true},
		{in: `"-9.3e18"`, wantErr: true},
		{in: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got flexInt
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if int64(got) != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadsHonourRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"id":7,"name":"Route 9","starting_time":"00:30:00Z"}`)
	}))
	// Without the hint the client would sleep for the backoff.
	c.retryBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := c.GetRoute(ctx, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("calls = %d, want 2", n)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		in     string
		want   time.Duration
		wantOK bool
	}{
		{"", 0, false},
		{"2", 2 * time.Second, true},
		{"86400", maxRetryAfter, true},
		{"-1", 0, false},
		{now.Add(3 * time.Second).Format(http.TimeFormat), 3 * time.Second, true},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0, true},
		{"tomorrow", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseRetryAfter(tt.in, now)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("parseRetryAfter(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
