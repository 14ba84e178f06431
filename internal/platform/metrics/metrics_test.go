package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(5*time.Hour + 30*time.Minute)

	c.ObserveCommit("success")
	c.ObserveCommit("partial")
	c.ObserveCommit("partial")
	c.ObserveLandmarkWrite("create", nil)
	c.ObserveLandmarkWrite("create", errors.New("boom"))
	c.NATSSetConnected(true)

	if got := testutil.ToFloat64(c.Commits.WithLabelValues("partial")); got != 2 {
		t.Fatalf("partial commits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.LandmarkWrites.WithLabelValues("create", "error")); got != 1 {
		t.Fatalf("failed creates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.EventsConnected); got != 1 {
		t.Fatalf("connected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.CivilOffset); got != 19800 {
		t.Fatalf("civil offset = %v, want 19800", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	c := NewCollector(0)
	c.ObserveBackend("POST", "/route", 201, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "itinerary_backend_request_duration_seconds_count") {
		t.Fatalf("metrics output missing backend histogram:\n%s", body)
	}
}
