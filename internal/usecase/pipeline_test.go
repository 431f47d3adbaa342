package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/search"
	"TrialsLoader/internal/transform"
)

type fakeSource struct {
	studies []domain.RawStudy
	err     error
}

func (f *fakeSource) LoadSnapshot(context.Context) ([]domain.RawStudy, error) {
	return f.studies, f.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	summaries []domain.RunSummary
}

func (f *fakeNotifier) PublishSummary(_ context.Context, summary domain.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return nil
}

func study(nctID, minimumAge string) domain.RawStudy {
	return domain.RawStudy{
		ProtocolSection: &domain.ProtocolSection{
			Identification: &domain.IdentificationModule{NCTID: nctID, BriefTitle: "Trial " + nctID},
			Eligibility:    &domain.EligibilityModule{MinimumAge: minimumAge},
		},
	}
}

func newTestPipeline(source *fakeSource, store *fakeStore, notifier *fakeNotifier) *Pipeline {
	deps := PipelineDeps{
		Source:      source,
		Transformer: transform.New(0),
		Reconciler:  NewReconciler(store, search.NewProjector(), 2, 1, nil),
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewPipeline(deps)
}

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	source := &fakeSource{studies: []domain.RawStudy{
		study("NCT001", "18 Years"),
		{}, // no identity key
		study("NCT002", "not an age"),
	}}
	store := newFakeStore()
	notifier := &fakeNotifier{}

	summary, err := newTestPipeline(source, store, notifier).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if summary.Total != 3 {
		t.Fatalf("unexpected total %d", summary.Total)
	}
	if summary.Inserted != 2 {
		t.Fatalf("expected 2 inserts, got %d", summary.Inserted)
	}
	if summary.Rejected != 1 {
		t.Fatalf("expected 1 rejection, got %d", summary.Rejected)
	}
	if len(summary.RejectedIDs) != 1 || summary.RejectedIDs[0] != "record[1]" {
		t.Fatalf("unexpected rejected ids %v", summary.RejectedIDs)
	}
	if summary.FieldErrors[domain.CodeAgeUnparseable] != 1 {
		t.Fatalf("unexpected field errors %v", summary.FieldErrors)
	}

	// Records without a key never reach the primary table.
	if len(store.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.rows))
	}
	if len(notifier.summaries) != 1 {
		t.Fatalf("expected 1 published summary, got %d", len(notifier.summaries))
	}
}

func TestPipelineSecondRunIsAllNoops(t *testing.T) {
	t.Parallel()

	source := &fakeSource{studies: []domain.RawStudy{
		study("NCT001", "18 Years"),
		study("NCT002", "21 Years"),
	}}
	store := newFakeStore()
	pipeline := newTestPipeline(source, store, nil)

	if _, err := pipeline.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipeline.Run(context.Background(), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.Noops != 2 || second.Inserted != 0 || second.Updated != 0 {
		t.Fatalf("second pass should be all no-ops: %+v", second)
	}
}

func TestPipelineSnapshotErrorIsFatal(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: context.DeadlineExceeded}
	if _, err := newTestPipeline(source, newFakeStore(), nil).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when the snapshot cannot be loaded")
	}
}
