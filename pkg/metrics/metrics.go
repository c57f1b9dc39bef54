package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry metrics
	CellsOpenTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kvs_cells_open_total",
			Help: "Total number of PersistentCell instances currently registered",
		},
	)

	// Cell I/O metrics
	CellReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_cell_reads_total",
			Help: "Total number of cell reads by store name",
		},
		[]string{"store"},
	)

	CellWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_cell_writes_total",
			Help: "Total number of committed cell writes by store name",
		},
		[]string{"store"},
	)

	CellWriteErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_cell_write_errors_total",
			Help: "Total number of failed cell writes by store name",
		},
		[]string{"store"},
	)

	CellDecodeFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_cell_decode_fallbacks_total",
			Help: "Total number of reads that fell back to the codec default value after a decode or decrypt failure",
		},
		[]string{"store"},
	)

	CommitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kvs_commit_duration_seconds",
			Help:    "Time taken to apply and persist one commit",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)

	// Editor metrics
	EditorCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_editor_commits_total",
			Help: "Total number of successful editor commits by store name",
		},
		[]string{"store"},
	)

	EditorInvalidStateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_editor_invalid_state_total",
			Help: "Total number of editor operations rejected for invalid state",
		},
		[]string{"store"},
	)

	// TTL metrics
	TTLExpirationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_ttl_expirations_total",
			Help: "Total number of entries removed because they expired, by store name and removal path (get_all, cleanup_job)",
		},
		[]string{"store", "path"},
	)

	CleanupCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvs_cleanup_cycles_total",
			Help: "Total number of periodic TTL cleanup job cycles run, by store name",
		},
		[]string{"store"},
	)

	CleanupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kvs_cleanup_duration_seconds",
			Help:    "Time taken for one TTL cleanup cycle",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)
)

func init() {
	prometheus.MustRegister(CellsOpenTotal)
	prometheus.MustRegister(CellReadsTotal)
	prometheus.MustRegister(CellWritesTotal)
	prometheus.MustRegister(CellWriteErrorsTotal)
	prometheus.MustRegister(CellDecodeFallbacksTotal)
	prometheus.MustRegister(CommitDuration)
	prometheus.MustRegister(EditorCommitsTotal)
	prometheus.MustRegister(EditorInvalidStateTotal)
	prometheus.MustRegister(TTLExpirationsTotal)
	prometheus.MustRegister(CleanupCyclesTotal)
	prometheus.MustRegister(CleanupDuration)
}

// Handler returns the Prometheus HTTP handler, served by `kvsctl serve`.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
