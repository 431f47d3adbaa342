package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"TrialsLoader/internal/domain"
	"TrialsLoader/internal/ports"
	"TrialsLoader/internal/transform"
)

// PipelineDeps wires all collaborators into the run orchestration.
type PipelineDeps struct {
	Source      ports.StudySource
	Transformer *transform.Transformer
	Reconciler  *Reconciler
	Notifier    ports.Notifier
	Recorder    ports.RunRecorder
	Logger      *slog.Logger
}

// Pipeline implements one full transform-and-load run: snapshot in, run
// summary out.
type Pipeline struct {
	source      ports.StudySource
	transformer *transform.Transformer
	reconciler  *Reconciler
	notifier    ports.Notifier
	recorder    ports.RunRecorder
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:      deps.Source,
		transformer: deps.Transformer,
		reconciler:  deps.Reconciler,
		notifier:    deps.Notifier,
		recorder:    deps.Recorder,
		logger:      deps.Logger,
	}
}

// Run executes one snapshot load. Transformation failures stay inside the
// summary; the returned error is reserved for systemic failures (unreadable
// snapshot, store unreachable) that abort the run. Records committed before
// such a failure stay committed.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:       now.UTC().Format("20060102T150405Z"),
		StartedAt:   now.UTC(),
		FieldErrors: map[string]int{},
	}

	studies, err := p.source.LoadSnapshot(ctx)
	if err != nil {
		return summary, fmt.Errorf("load snapshot: %w", err)
	}

	summary.Total = len(studies)
	p.info("snapshot loaded", "run_id", summary.RunID, "records", len(studies))

	canonical := make([]domain.CanonicalTrial, 0, len(studies))
	for i, raw := range studies {
		trial, err := p.transformer.Transform(raw)
		if err != nil {
			if errors.Is(err, transform.ErrMissingNCTID) {
				// Data-quality event: surface and skip persistence for
				// this record only.
				summary.Rejected++
				summary.RejectedIDs = append(summary.RejectedIDs, fmt.Sprintf("record[%d]", i))
				p.warn("record rejected", "run_id", summary.RunID, "index", i, "error", err)
				continue
			}
			return summary, fmt.Errorf("transform record %d: %w", i, err)
		}
		summary.AddFieldErrors(trial.FieldErrors)
		canonical = append(canonical, trial)
	}

	p.reconciler.Reconcile(ctx, summary.RunID, canonical, &summary)
	summary.FinishedAt = time.Now().UTC()

	if p.recorder != nil {
		p.recorder.ObserveRun(summary)
	}

	p.info("run finished", "run_id", summary.RunID, "summary", summary.String())

	if p.notifier != nil {
		if err := p.notifier.PublishSummary(ctx, summary); err != nil {
			// Notification is best effort; the load already committed.
			p.warn("publish summary failed", "run_id", summary.RunID, "error", err)
		}
	}

	return summary, ctx.Err()
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
