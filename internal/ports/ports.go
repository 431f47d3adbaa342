package ports

import (
	"context"
	"time"

	"TrialsLoader/internal/domain"
)

// StudySource streams one snapshot of raw study records into a run.
type StudySource interface {
	LoadSnapshot(ctx context.Context) ([]domain.RawStudy, error)
}

// TrialStore is the persistence gateway over the primary table and its
// derived search-vector table. UpsertTrial commits the primary row and the
// search document in one transaction: either both land or neither does.
type TrialStore interface {
	GetExisting(ctx context.Context, nctID string) (*domain.StoredTrial, error)
	UpsertTrial(ctx context.Context, trial domain.CanonicalTrial, doc domain.SearchDocument, runID string) (domain.WriteOutcome, error)
}

// RunRecorder feeds run outcomes into the metrics backend.
type RunRecorder interface {
	ObserveRun(summary domain.RunSummary)
}

// Notifier publishes the per-run summary to an outbound channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary domain.RunSummary) error
}

// Scheduler controls when runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
