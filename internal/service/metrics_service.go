package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the check-in/staffing domain.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	checkinsTotal    *prometheus.CounterVec
	staffingWarnings prometheus.Counter
	feedIssuesTotal  *prometheus.CounterVec
	feedSize         prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	checkinsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkins_total",
		Help: "Total arrival submissions by result",
	}, []string{"result"})

	staffingWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staffing_warnings_total",
		Help: "Total understaffing warnings emitted by the monitor",
	})

	feedIssuesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_issues_total",
		Help: "Total issues appended to the live feed by type",
	}, []string{"type"})

	feedSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_size",
		Help: "Current number of buffered feed issues",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, checkinsTotal, staffingWarnings, feedIssuesTotal, feedSize, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		checkinsTotal:    checkinsTotal,
		staffingWarnings: staffingWarnings,
		feedIssuesTotal:  feedIssuesTotal,
		feedSize:         feedSize,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records request counters and latency.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCheckIn counts an arrival submission outcome.
func (s *MetricsService) RecordCheckIn(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	s.checkinsTotal.WithLabelValues(result).Inc()
}

// RecordStaffingWarnings counts warnings emitted by one monitor tick.
func (s *MetricsService) RecordStaffingWarnings(count int) {
	s.staffingWarnings.Add(float64(count))
}

// RecordIssue counts a feed append and tracks the buffer size.
func (s *MetricsService) RecordIssue(issueType string, size int) {
	s.feedIssuesTotal.WithLabelValues(issueType).Inc()
	s.feedSize.Set(float64(size))
}
