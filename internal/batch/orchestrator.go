// Package batch runs generation attempts over an ordered list of
// configuration sources, strictly sequentially, and aggregates the
// outcomes into RunStats.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"dreamgate/internal/cache"
	"dreamgate/internal/config"
	"dreamgate/internal/dream"
	"dreamgate/internal/logging"
	"dreamgate/internal/oracle"
)

var (
	// ErrBatchTooLarge rejects a batch before any attempt runs.
	ErrBatchTooLarge = errors.New("batch exceeds the configured source limit")
	// ErrAllAttemptsFailed signals total failure: every attempt in the
	// batch ended in Failed. Partial failure is reported via stats only.
	ErrAllAttemptsFailed = errors.New("every attempt in the batch failed")
)

// Orchestrator owns the cache and random source for the lifetime of a
// batch run. One backend call is outstanding at a time; total run time
// is bounded by len(sources) * passes * timeout.
type Orchestrator struct {
	cache      *cache.ConfigCache
	rng        *rand.Rand
	timeout    time.Duration
	maxSources int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides the per-attempt oracle timeout. Zero keeps each
// source config's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithMaxSources overrides the batch size cap.
func WithMaxSources(n int) Option {
	return func(o *Orchestrator) { o.maxSources = n }
}

// New creates an orchestrator. The cache is shared across all passes of
// a run: entries are content-addressed and backend-agnostic, so a second
// comparison pass reuses what the first pass loaded.
func New(c *cache.ConfigCache, rng *rand.Rand, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cache:      c,
		rng:        rng,
		maxSources: config.DefaultMaxSources,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunBatch iterates sourceIDs in order, resolving each configuration
// through the cache and running one attempt per source per backend.
// Backends run as fully sequential passes: the whole source list against
// backends[0], then again against backends[1], and so on. A failed
// attempt never aborts the batch; only total failure surfaces as
// ErrAllAttemptsFailed. Cancellation is cooperative and checked between
// attempts.
func (o *Orchestrator) RunBatch(ctx context.Context, brain *config.Brain, sourceIDs []string, backends []oracle.Client) (*RunStats, error) {
	if len(backends) == 0 {
		return nil, errors.New("at least one backend is required")
	}
	if len(sourceIDs) > o.maxSources {
		return nil, fmt.Errorf("%w: %d sources, limit %d", ErrBatchTooLarge, len(sourceIDs), o.maxSources)
	}

	stats := newRunStats()
	start := time.Now()
	log := logging.Get(logging.CategoryBatch)
	log.Info("batch %s: %d sources, %d backend passes", stats.RunID, len(sourceIDs), len(backends))

	for _, backend := range backends {
		for _, sourceID := range sourceIDs {
			select {
			case <-ctx.Done():
				stats.Elapsed = time.Since(start)
				return stats, ctx.Err()
			default:
			}
			stats.record(o.runOne(ctx, brain, sourceID, backend))
		}
	}

	stats.Elapsed = time.Since(start)
	log.Info("%s", stats)

	if stats.AllFailed() {
		return stats, ErrAllAttemptsFailed
	}
	return stats, nil
}

func (o *Orchestrator) runOne(ctx context.Context, brain *config.Brain, sourceID string, backend oracle.Client) dream.Outcome {
	timer := logging.StartTimer(logging.CategoryBatch, "attempt "+filepath.Base(sourceID))
	cfg, tier, err := o.cache.Get(sourceID)
	if err != nil {
		logging.Batch("source %s: configuration error: %v", sourceID, err)
		return dream.FailedOutcome(backend.Name(), err, timer.Stop())
	}

	timeout := o.timeout
	if timeout <= 0 {
		timeout = cfg.ModelTimeout()
	}

	runner := dream.NewRunner(backend, timeout, o.rng)
	outcome := runner.Run(ctx, brain, cfg)
	if outcome.Status == dream.StatusSuccess && tier != cache.TierMiss {
		outcome.Status = dream.StatusCacheHit
	}
	timer.Stop()
	logging.BatchDebug("source %s via %s: %s (tier %s)", sourceID, backend.Name(), outcome.Status, tier)
	return outcome
}
