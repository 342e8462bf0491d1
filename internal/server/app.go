// Package server wires the veracity service together: storage, inference
// adapters, optional cache/events/archive/metrics integrations, and the
// gRPC and HTTP transports, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/logging"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/auth"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/config"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/events"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/httpapi"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/imagestore"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/metrics"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/repomanager"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/scoring"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/services"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/signals"

	gs "github.com/mohitexpo007/Ocean-Hazard-App/internal/server/grpc"
)

const serviceName = "hazard-veracity"

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	reports  *services.ReportService
	verifier *auth.Verifier
	closers  []func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger, verifier: auth.NewVerifier(c.SecretKey)}

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	repos, err := openStore(ctx, c)
	if err != nil {
		return fmt.Errorf("store init error: %w", err)
	}
	app.repos = repos
	app.closers = append(app.closers, func(context.Context) error { return repos.Close() })

	if err := repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	client := signals.NewModelClient(c.ModelServerURL, signals.ClientOptions{
		Timeout:    c.InferenceTimeout,
		MaxRetries: c.InferenceRetries,
	})

	var embedder signals.Embedder = signals.NewSentenceEmbedder(client)
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		embedder = signals.NewCachedEmbedder(embedder, signals.NewRedisStore(rdb), c.EmbeddingCacheTTL, "veracity:emb:", app.logger)
	}

	var publisher events.Publisher = events.Nop{}
	if c.NATSURL != "" {
		p, err := events.ConnectNATS(c.NATSURL, c.NATSSubjectPrefix)
		if err != nil {
			return fmt.Errorf("nats init error: %w", err)
		}
		publisher = p
		app.closers = append(app.closers, func(context.Context) error { return p.Close() })
	}

	var archive imagestore.Archive
	if c.S3Bucket != "" {
		a, err := imagestore.NewS3Archive(ctx, imagestore.Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
		})
		if err != nil {
			return fmt.Errorf("s3 init error: %w", err)
		}
		archive = a
	}

	shutdownMetrics, err := metrics.Init(ctx, c.OTLPEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("metrics init error: %w", err)
	}
	app.closers = append(app.closers, shutdownMetrics)

	threshold := c.CorroborationThreshold
	app.reports = services.NewReportService(services.Deps{
		Repos: repos,
		Text:  signals.NewZeroShotTextClassifier(client, c.HazardLabels),
		Image: signals.NewCLIPImageClassifier(client, c.HazardLabels),
		Corroborator: scoring.NewCorroborator(embedder, scoring.CorroborationPolicy{
			RadiusKm:  c.CorroborationRadiusKm,
			Threshold: &threshold,
			Divisor:   c.CorroborationDivisor,
		}),
		Archive: archive,
		Events:  publisher,
		Metrics: metrics.New(nil),
		Logger:  app.logger,
	}, services.Options{
		IdempotentVerify: c.IdempotentVerify,
		RejectDuplicates: c.RejectDuplicateReports,
		Lookback:         c.CorroborationLookback,
		MaxCandidates:    c.CorroborationMaxCandidates,
	})

	app.logger.Info(ctx, "app initialized",
		"store", repos.Driver(),
		"model_server", c.ModelServerURL,
		"embedding_cache", c.RedisURL != "",
		"events", c.NATSURL != "",
		"image_archive", archive != nil,
		"auth", app.verifier.Enabled(),
	)
	return nil
}

func openStore(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StoreDriver {
	case repomanager.DriverMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	case repomanager.DriverPostgres:
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return repomanager.NewPostgresRepositoryManager(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.reports, app.verifier)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.reports, app.verifier, app.logger, app.repos.Driver())
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled, a signal arrives or
// either server fails, then releases every integration.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	sctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	app.close(sctx)
	app.logger.Info(sctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
}
