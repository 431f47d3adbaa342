package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/ports"
	"TrialsLoader/internal/search"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 3
	retryBaseDelay     = 100 * time.Millisecond
)

// keyedLocks serializes work per trial key while letting distinct keys
// proceed concurrently. Locks are never removed; the key space of a daily
// snapshot is bounded.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: map[string]*sync.Mutex{}}
}

func (k *keyedLocks) forKey(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

// Reconciler converges the store to the latest canonical snapshot. Per
// record it decides insert, update or no-op against the persisted content
// hash; only changed records reach the gateway and the search projector.
type Reconciler struct {
	store       ports.TrialStore
	projector   *search.Projector
	workers     int
	maxAttempts int
	logger      *slog.Logger
	keys        *keyedLocks
}

// NewReconciler wires the gateway and projector; workers and maxAttempts
// fall back to defaults when non-positive.
func NewReconciler(store ports.TrialStore, projector *search.Projector, workers, maxAttempts int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if projector == nil {
		projector = search.NewProjector()
	}
	return &Reconciler{
		store:       store,
		projector:   projector,
		workers:     workers,
		maxAttempts: maxAttempts,
		logger:      logger,
		keys:        newKeyedLocks(),
	}
}

// Reconcile applies the snapshot with bounded parallelism and fills the
// persistence counters of the summary. A failing record never aborts the
// batch; cancellation stops scheduling new records and drains in-flight
// ones, whose per-record transactions are individually atomic.
func (r *Reconciler) Reconcile(ctx context.Context, runID string, trials []domain.CanonicalTrial, summary *domain.RunSummary) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, r.workers)
	)

	for _, trial := range trials {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(trial domain.CanonicalTrial) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome, err := r.reconcileOne(ctx, runID, trial)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				// A drained record is neither written nor broken; only real
				// write failures count against the run.
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				summary.Failed++
				summary.FailedIDs = append(summary.FailedIDs, trial.NCTID)
				r.warn("record failed", "nct_id", trial.NCTID, "error", err)
				return
			}

			switch outcome {
			case domain.OutcomeInserted:
				summary.Inserted++
			case domain.OutcomeUpdated:
				summary.Updated++
			case domain.OutcomeNoop:
				summary.Noops++
			}
		}(trial)
	}

	wg.Wait()
}

// reconcileOne holds the per-key lock for the whole read-compare-write
// cycle, so a key appearing twice in one batch (or two overlapping runs in
// the same process) cannot interleave and lose an update.
func (r *Reconciler) reconcileOne(ctx context.Context, runID string, trial domain.CanonicalTrial) (domain.WriteOutcome, error) {
	lock := r.keys.forKey(trial.NCTID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(attempt-1)):
			}
		}

		outcome, err := r.applyOnce(ctx, runID, trial)
		if err == nil {
			return outcome, nil
		}
		lastErr = err
		r.warn("write attempt failed", "nct_id", trial.NCTID, "attempt", attempt, "error", err)
	}

	return "", errors.Join(errors.New("retries exhausted"), lastErr)
}

func (r *Reconciler) applyOnce(ctx context.Context, runID string, trial domain.CanonicalTrial) (domain.WriteOutcome, error) {
	existing, err := r.store.GetExisting(ctx, trial.NCTID)
	if err != nil {
		return "", err
	}

	if existing != nil && existing.ContentHash == trial.ContentHash() {
		// Identical content: no write, no timestamp bump.
		return domain.OutcomeNoop, nil
	}

	doc := r.projector.Project(trial)
	return r.store.UpsertTrial(ctx, trial, doc, runID)
}

func (r *Reconciler) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
