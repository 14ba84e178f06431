package metrics

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Commits        *prometheus.CounterVec // status: success|partial|route_failed
	LandmarkWrites *prometheus.CounterVec // op: create|update|delete, result: ok|error

	BackendRequests *prometheus.HistogramVec // method, path, code
	APIRequests     *prometheus.HistogramVec // method, code

	EventsPublished   prometheus.Counter
	EventsPublishErrs prometheus.Counter
	EventsConnected   prometheus.Gauge
	PublishDuration   prometheus.Histogram

	CivilOffset prometheus.Gauge // seconds east of UTC
}

func NewCollector(civilOffset time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itinerary_commits_total",
			Help: "Route commits by outcome.",
		}, []string{"status"}),
		LandmarkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "itinerary_landmark_writes_total",
			Help: "Route landmark writes sent to the backend.",
		}, []string{"op", "result"}),
		BackendRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itinerary_backend_request_duration_seconds",
			Help:    "Latency of operator backend requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "path", "code"}),
		APIRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "itinerary_http_request_duration_seconds",
			Help:    "Latency of console API requests.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"method", "code"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_nats_published_total",
			Help: "Total commit events published to NATS.",
		}),
		EventsPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itinerary_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		EventsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itinerary_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "itinerary_publish_duration_seconds",
			Help:    "Duration to marshal and publish a commit event.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		CivilOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "itinerary_civil_offset_seconds",
			Help: "Configured civil offset from UTC.",
		}),
	}

	reg.MustRegister(
		c.Commits, c.LandmarkWrites,
		c.BackendRequests, c.APIRequests,
		c.EventsPublished, c.EventsPublishErrs, c.EventsConnected, c.PublishDuration,
		c.CivilOffset,
	)

	c.CivilOffset.Set(civilOffset.Seconds())

	return c
}

func (c *Collector) ObserveCommit(status string) {
	c.Commits.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveLandmarkWrite(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.LandmarkWrites.WithLabelValues(op, result).Inc()
}

func (c *Collector) ObserveBackend(method, path string, code int, d time.Duration) {
	c.BackendRequests.WithLabelValues(method, path, strconv.Itoa(code)).Observe(d.Seconds())
}

func (c *Collector) ObserveRequest(method string, code int, d time.Duration) {
	c.APIRequests.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
}

func (c *Collector) NATSPublishedInc()              { c.EventsPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.EventsPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.EventsConnected.Set(1)
		return
	}
	c.EventsConnected.Set(0)
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
