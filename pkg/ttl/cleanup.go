package ttl

import (
	"context"
	"time"

	"github.com/cuemby/kvs/pkg/log"
	"github.com/cuemby/kvs/pkg/metrics"
	"github.com/google/uuid"
)

// CleanupJob periodically sweeps expired entries out of an Engine's backing
// state, independent of any read path. Reads never depend on it: it exists
// so a long-idle store does not accumulate unbounded expired entries on
// disk between reads.
type CleanupJob struct {
	engine   *Engine
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupJob builds a job that sweeps engine every interval once
// started.
func NewCleanupJob(engine *Engine, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		engine:   engine,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop in a new goroutine. Start must be called
// at most once per CleanupJob.
func (j *CleanupJob) Start(ctx context.Context) {
	go j.run(ctx)
}

// Stop signals the sweep loop to exit. The loop observes the signal within
// one tick interval and never blocks a cycle already in progress.
func (j *CleanupJob) Stop() {
	close(j.stopCh)
}

func (j *CleanupJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger := log.WithStore(j.engine.store)
	logger.Info().Dur("interval", j.interval).Msg("ttl cleanup job started")

	for {
		select {
		case <-ticker.C:
			cycleID := uuid.New().String()
			removed, err := j.sweep(ctx)
			if err != nil {
				logger.Error().Str("cycle_id", cycleID).Err(err).Msg("ttl cleanup cycle failed")
			} else if removed > 0 {
				logger.Debug().Str("cycle_id", cycleID).Int("removed", removed).Msg("ttl cleanup cycle removed expired entries")
			}
		case <-ctx.Done():
			logger.Info().Msg("ttl cleanup job stopped")
			return
		case <-j.stopCh:
			logger.Info().Msg("ttl cleanup job stopped")
			return
		}
	}
}

func (j *CleanupJob) sweep(ctx context.Context) (int, error) {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDurationVec(metrics.CleanupDuration, j.engine.store)
		metrics.CleanupCyclesTotal.WithLabelValues(j.engine.store).Inc()
	}()

	state, err := j.engine.cell.Read(ctx)
	if err != nil {
		return 0, err
	}

	expiredKeys := make([]string, 0)
	for k, entry := range state {
		if j.engine.manager.IsExpired(entry.ExpiresAt) {
			expiredKeys = append(expiredKeys, k)
		}
	}
	if len(expiredKeys) == 0 {
		return 0, nil
	}

	_, err = j.engine.cell.UpdateData(ctx, func(state map[string]Entry) map[string]Entry {
		next := make(map[string]Entry, len(state))
		for k, v := range state {
			next[k] = v
		}
		for _, k := range expiredKeys {
			delete(next, k)
		}
		return next
	})
	if err != nil {
		return 0, err
	}
	metrics.TTLExpirationsTotal.WithLabelValues(j.engine.store, "cleanup_job").Add(float64(len(expiredKeys)))
	return len(expiredKeys), nil
}
