package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nfl_upstream_requests_total",
			Help: "Upstream ESPN requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nfl_upstream_request_duration_seconds",
			Help:    "Duration of upstream ESPN requests, retries included.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		UpstreamRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nfl_upstream_retries_total",
			Help: "Retried upstream ESPN attempts by endpoint.",
		}, []string{"endpoint"}),
		StoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nfl_store_writes_total",
			Help: "Document writes by collection and result.",
		}, []string{"collection", "result"}),
		TaskRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nfl_task_runs_total",
			Help: "Finished background task runs by name and final state.",
		}, []string{"task", "state"}),
		TaskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nfl_task_duration_seconds",
			Help:    "Duration of background task runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"task"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nfl_http_requests_total",
			Help: "API requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nfl_http_request_duration_seconds",
			Help:    "API request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		s.UpstreamRequests,
		s.UpstreamDuration,
		s.UpstreamRetries,
		s.StoreWrites,
		s.TaskRuns,
		s.TaskDuration,
		s.HTTPRequests,
		s.HTTPDuration,
	)

	return s
}

func (s *Service) ObserveUpstream(endpoint, outcome string, duration time.Duration) {
	s.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	s.UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (s *Service) IncUpstreamRetries(endpoint string) {
	s.UpstreamRetries.WithLabelValues(endpoint).Inc()
}

func (s *Service) AddStoreWrites(collection, result string, n int) {
	if n <= 0 {
		return
	}
	s.StoreWrites.WithLabelValues(collection, result).Add(float64(n))
}

func (s *Service) ObserveTask(name, state string, duration time.Duration) {
	s.TaskRuns.WithLabelValues(name, state).Inc()
	s.TaskDuration.WithLabelValues(name).Observe(duration.Seconds())
}

func (s *Service) ObserveHTTP(route, method string, status int, duration time.Duration) {
	s.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	s.HTTPDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
