/*
Package metrics provides Prometheus metrics collection and exposition for the
kvs store: cell lifecycle, read/write/commit counts and latency, TTL
expirations, and cleanup job cycles. Metrics are exposed via an HTTP endpoint
for scraping by Prometheus servers, served by `kvsctl serve`.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Categories               │          │
	│  │                                              │          │
	│  │  Registry: cells currently open             │          │
	│  │  Cell I/O: reads, writes, write errors,     │          │
	│  │            decode fallbacks, commit latency │          │
	│  │  Editor: commits, invalid-state rejections  │          │
	│  │  TTL: expirations by removal path, cleanup  │          │
	│  │       cycle count and duration              │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

kvs_cells_open_total:
  - Type: Gauge
  - Description: Number of PersistentCell instances currently registered
    across all stores (one per distinct path, per registry invariant)

kvs_cell_reads_total{store}:
  - Type: Counter
  - Description: Cell reads by store name

kvs_cell_writes_total{store}:
  - Type: Counter
  - Description: Committed cell writes by store name

kvs_cell_write_errors_total{store}:
  - Type: Counter
  - Description: Failed cell writes by store name (encode, encrypt, or
    atomic-rename failure)

kvs_cell_decode_fallbacks_total{store}:
  - Type: Counter
  - Description: Reads that fell back to the codec default value after a
    decode or decrypt failure

kvs_commit_duration_seconds{store}:
  - Type: Histogram
  - Description: Time to apply and persist one commit (encode + encrypt +
    atomic write)

kvs_editor_commits_total{store}:
  - Type: Counter
  - Description: Successful Editor.Commit calls by store name

kvs_editor_invalid_state_total{store}:
  - Type: Counter
  - Description: Editor operations rejected because the editor was not Open

kvs_ttl_expirations_total{store, path}:
  - Type: Counter
  - Description: Entries removed because they expired, partitioned by
    removal path: "get_all" (batch read) or "cleanup_job" (periodic
    sweep); single-key reads remove nothing and are not counted

kvs_cleanup_cycles_total{store}:
  - Type: Counter
  - Description: Periodic TTL cleanup job cycles run

kvs_cleanup_duration_seconds{store}:
  - Type: Histogram
  - Description: Time taken for one TTL cleanup cycle

# Usage

	import "github.com/cuemby/kvs/pkg/metrics"

	metrics.CellReadsTotal.WithLabelValues("user-prefs").Inc()

	timer := metrics.NewTimer()
	_, err := cell.UpdateData(ctx, fn)
	timer.ObserveDurationVec(metrics.CommitDuration, "user-prefs")
	if err != nil {
		metrics.CellWriteErrorsTotal.WithLabelValues("user-prefs").Inc()
	}

	http.Handle("/metrics", metrics.Handler())

# Health and Readiness

RegisterComponent/UpdateComponent track liveness of the registry and the
TTL cleanup job; GetReadiness reports "not_ready" while either one is
unregistered or its most recent report is unhealthy. HealthHandler, ReadyHandler, and LivenessHandler
are the HTTP handlers `kvsctl serve` mounts at /health, /ready, and /live.

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
