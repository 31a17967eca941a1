package telemetry

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tabetl/internal/logging"
)

const namespace = "tabetl"

// Metrics are the pipeline counters and histograms.
type Metrics struct {
	Runs               *prometheus.CounterVec   // status=ok|failed
	RowsRead           prometheus.Counter
	RowsWritten        *prometheus.CounterVec   // sink
	StageDuration      *prometheus.HistogramVec // stage
	ValidationFailures *prometheus.CounterVec   // reason
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// InitMetrics registers the metrics once. A nil registry means the default
// registerer; later calls return the first instance.
func InitMetrics(registry *prometheus.Registry) *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics(registry)
	})
	return metricsInstance
}

// NewMetrics registers a fresh set on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	if registry != nil {
		registerer = registry
	}
	factory := promauto.With(registerer)
	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by outcome",
			},
			[]string{"status"},
		),
		RowsRead: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_read_total",
				Help:      "Rows read from the source",
			},
		),
		RowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_written_total",
				Help:      "Rows handed to each sink",
			},
			[]string{"sink"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(.001, 4, 10),
			},
			[]string{"stage"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Validation failures by reason",
			},
			[]string{"reason"},
		),
	}
}

// Expose serves /metrics and /healthz on addr in the background. Close the
// returned server to stop it.
func Expose(addr string, gatherer prometheus.Gatherer) *http.Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("metrics server stopped", "addr", srv.Addr, "err", err)
		}
	}()
	return srv
}

// Router is the metrics HTTP handler.
func Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
