package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"TrialsLoader/internal/config"
	"TrialsLoader/internal/infrastructure/scheduler"
	"TrialsLoader/internal/infrastructure/source"
	"TrialsLoader/internal/infrastructure/storage"
	"TrialsLoader/internal/infrastructure/telegram"
	"TrialsLoader/internal/logging"
	"TrialsLoader/internal/metrics"
	"TrialsLoader/internal/ports"
	"TrialsLoader/internal/search"
	"TrialsLoader/internal/transform"
	"TrialsLoader/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	repo     *storage.PostgresRepository
	recorder *metrics.Recorder
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)
	recorder := metrics.NewRecorder()

	reconciler := usecase.NewReconciler(
		repo,
		search.NewProjector(),
		cfg.Loader.Workers,
		cfg.Loader.MaxAttempts,
		baseLogger.With("component", "reconciler"),
	)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source.NewSnapshotSource(cfg.Loader.SnapshotPath, baseLogger.With("component", "source")),
		Transformer: transform.New(cfg.Loader.TextLimit),
		Reconciler:  reconciler,
		Notifier:    notifier,
		Recorder:    recorder,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		repo:     repo,
		recorder: recorder,
		db:       db,
	}, nil
}

// Run prepares the store and executes the pipeline, once or on an interval
// depending on configuration.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.repo.Ping(ctx); err != nil {
		return err
	}
	if err := a.repo.EnsureSchema(ctx); err != nil {
		return err
	}

	a.serveMetrics(ctx)

	if a.cfg.Scheduler.RunOnce {
		now := time.Now().In(a.cfg.Scheduler.Location())
		summary, err := a.pipeline.Run(ctx, now)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d records failed to persist", summary.Failed)
		}
		return nil
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

func (a *Application) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.ListenAddress
	if addr == "" {
		return
	}

	server := &http.Server{Addr: addr, Handler: a.recorder.Handler()}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics listener stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	a.logger.Info("metrics listening", "addr", addr)
}
