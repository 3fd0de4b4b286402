package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taxdocs/internal/category"
	"taxdocs/internal/checks"
	"taxdocs/internal/config"
	natsevents "taxdocs/internal/events/nats"
	noopevents "taxdocs/internal/events/noop"
	"taxdocs/internal/handler"
	"taxdocs/internal/lifecycle"
	"taxdocs/internal/metrics"
	"taxdocs/internal/port"
	"taxdocs/internal/reporter/noop"
	"taxdocs/internal/reporter/ses"
	"taxdocs/internal/repository/memory"
	"taxdocs/internal/repository/postgres"
	redisrepo "taxdocs/internal/repository/redis"
	"taxdocs/internal/requirement"
	"taxdocs/internal/router"
	"taxdocs/internal/service"
	"taxdocs/internal/storage"
	"taxdocs/internal/validator"
	"taxdocs/pkg/logger"
)

// @title taxdocs API
// @version 1.0
// @description Tax document requirements, validation and lifecycle tracking.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	lg := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rule catalog
	src, err := storage.OpenCatalogSource(ctx, cfg.Catalog.Source, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to open catalog source: %w", err)
	}
	cat, err := storage.LoadCatalog(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	lg.Info("catalog loaded",
		zap.String("source", src.Describe()),
		zap.String("version", cat.Version()),
		zap.Int("categories", len(cat.CategoryIDs())),
	)
	for _, issue := range requirement.NewResolver(cat).ValidateAllConditions() {
		lg.Warn("catalog condition issue", zap.String("issue", issue))
	}

	// Document store
	repo, closeRepo, err := openDocumentRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Error reporting and events
	reporter, err := newReporter(ctx, cfg, lg)
	if err != nil {
		return err
	}
	publisher, err := newPublisher(cfg, lg)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	m := metrics.New()

	// Engines
	v := validator.NewDocumentValidator(
		category.NewResolver(cat),
		validator.NewBuiltinRegistry(),
		nil,
		reporter,
		lg.Named("validator"),
	)
	runner := checks.NewDefaultRunner(v, cfg.Checks, &http.Client{}, m, lg.Named("checks"))
	tracker := lifecycle.NewTracker(repo, lg.Named("lifecycle"))

	// Services and handlers
	docSvc := service.NewDocumentService(
		repo,
		requirement.NewResolver(cat),
		v,
		tracker,
		runner,
		publisher,
		m,
		lg.Named("service"),
	)
	documentH := handler.NewDocumentHandler(docSvc)
	requirementH := handler.NewRequirementHandler(docSvc)
	healthH := handler.NewHealthHandler(docSvc, cfg.Store.Driver)

	r := router.Setup(lg, m, cfg.CORS.AllowedOrigins, documentH, requirementH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openDocumentRepo(ctx context.Context, cfg *config.Config) (port.DocumentRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewDocumentRepo(db), func() { _ = db.Close() }, nil
	case config.StoreRedis:
		client, err := redisrepo.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisrepo.NewDocumentRepo(client.Client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	default:
		return memory.NewDocumentRepo(), func() {}, nil
	}
}

func newReporter(ctx context.Context, cfg *config.Config, lg *zap.Logger) (port.ErrorReporter, error) {
	switch cfg.Reporter.Provider {
	case "ses":
		r, err := ses.NewSESReporter(ctx, cfg.Reporter.Region, cfg.Reporter.FromAddress, cfg.Reporter.FromName, cfg.Reporter.ToAddresses)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES reporter: %w", err)
		}
		return r, nil
	case "", "noop":
		return noop.NewNoopReporter(lg.Named("reporter")), nil
	default:
		return nil, fmt.Errorf("unknown reporter provider %q", cfg.Reporter.Provider)
	}
}

func newPublisher(cfg *config.Config, lg *zap.Logger) (port.EventPublisher, error) {
	switch cfg.Events.Provider {
	case "nats":
		p, err := natsevents.NewPublisher(cfg.Events.URL, cfg.Events.SubjectPrefix, lg.Named("events"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		return p, nil
	case "", "noop":
		return noopevents.NewNoopPublisher(lg.Named("events")), nil
	default:
		return nil, fmt.Errorf("unknown events provider %q", cfg.Events.Provider)
	}
}
