// Package server wires the Talkflo backend together: storage, the LLM
// client, the recording worker, the HTTP API and the ops gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/events"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/httpapi"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/llm"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/prompts"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/services"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/storage"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/worker"
	"golang.org/x/sync/errgroup"

	gs "github.com/Chris-Obeng/talkflo-app1/internal/server/grpc"
)

const drainTimeout = 30 * time.Second

// seams for tests
var (
	openDB   = dbx.Open
	newBlobs = func(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
		return storage.NewS3Store(ctx, cfg)
	}
	migrate = func(ctx context.Context, m *repomanager.PostgresRepositoryManager, db *sql.DB) error {
		return m.RunMigrations(ctx, db)
	}
	logOutput io.Writer = os.Stdout
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *worker.Dispatcher
	http       *httpapi.Server
	health     *gs.HealthServer
}

// NewApp connects to the database, applies migrations and builds every
// service. The returned App owns the database handle.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.LogFormat, logOutput)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app, err := build(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	repos := repomanager.NewPostgresRepositoryManager()
	if err := migrate(ctx, repos, db); err != nil {
		return nil, err
	}

	blobs, err := newBlobs(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	styles, err := prompts.Load()
	if err != nil {
		return nil, fmt.Errorf("prompt templates: %w", err)
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn(ctx, "OpenAI API key not set; transcription and enhancement will fail")
	}
	ai := llm.NewOpenAIClient(llm.Options{
		APIKey:             cfg.OpenAIAPIKey,
		BaseURL:            cfg.OpenAIBaseURL,
		TranscriptionModel: cfg.TranscriptionModel,
		ChatModel:          cfg.ChatModel,
	})

	broker := events.NewBroker()
	pipeline := worker.NewPipeline(db, repos, blobs, ai, broker, logger.With("module", "worker"))
	dispatcher := worker.NewDispatcher(pipeline, cfg.WorkerConcurrency, logger.With("module", "dispatcher"))

	var webhooks httpapi.WebhookVerifier = disabledWebhooks{}
	if cfg.WebhookSecret != "" {
		v, err := payments.NewVerifier(cfg.WebhookSecret, cfg.WebhookTolerance)
		if err != nil {
			return nil, err
		}
		webhooks = v
	} else {
		logger.Warn(ctx, "webhook secret not set; payment webhooks will be rejected")
	}

	// No job survives a restart; settle what the previous process left.
	if err := pipeline.FailInterrupted(ctx); err != nil {
		return nil, err
	}

	svcLog := logger.With("module", "services")
	deps := httpapi.Deps{
		Users:      services.NewUserService(db, repos, cfg, svcLog),
		Notes:      services.NewNoteService(db, repos, svcLog),
		Folders:    services.NewFolderService(db, repos, svcLog),
		Recordings: services.NewRecordingService(db, repos, blobs, broker, dispatcher, cfg, svcLog),
		AI:         services.NewAIService(db, repos, ai, styles, svcLog),
		Settings:   services.NewSettingsService(db, repos),
		Subscriptions: services.NewSubscriptionService(db, repos,
			payments.NewClient(cfg.PaymentsBaseURL, cfg.PaymentsAPIKey), cfg, svcLog),
		Webhooks: webhooks,
		DB:       db,
	}

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		dispatcher: dispatcher,
		http:       httpapi.NewServer(cfg, deps, logger),
		health:     gs.NewHealthServer(cfg.GRPCAddr, db, logger),
	}, nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for in-flight recordings before closing the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.http.Run(gctx) })
	g.Go(func() error { return app.health.Run(gctx) })
	err := g.Wait()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if derr := app.dispatcher.Shutdown(drainCtx); derr != nil {
		app.logger.Warn(ctx, "recording jobs cancelled on shutdown", "error", derr)
	}
	if cerr := app.db.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// disabledWebhooks rejects every delivery when no secret is configured.
type disabledWebhooks struct{}

func (disabledWebhooks) Verify(http.Header, []byte) error {
	return fmt.Errorf("%w: webhook secret not configured", common.ErrWebhookValidation)
}
