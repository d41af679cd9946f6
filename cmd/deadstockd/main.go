package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/bib/services/deadstock-service/internal/application/usecase"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/port"
	"github.com/bibbank/bib/services/deadstock-service/internal/domain/service"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/config"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/export"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/kafka"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/loader"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/messaging"
	"github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/metrics"
	pgRepo "github.com/bibbank/bib/services/deadstock-service/internal/infrastructure/postgres"
	grpcPresentation "github.com/bibbank/bib/services/deadstock-service/internal/presentation/grpc"
	"github.com/bibbank/bib/services/deadstock-service/internal/presentation/rest"
	"github.com/bibbank/bib/services/deadstock-service/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.Service.Name,
	})

	logger.Info("starting deadstock-service",
		"environment", cfg.Service.Environment,
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
	)

	// Tracing is optional.
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.Service.Name,
			Environment: cfg.Service.Environment,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	meterProvider, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Service.Name,
		Environment: cfg.Service.Environment,
	})
	if err != nil {
		logger.Warn("failed to initialize otel metrics", "error", err)
	} else {
		defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	}

	// Product source chain: postgres behind a breaker, synthetic fallback, cache.
	pool := connectDatabase(ctx, cfg, logger)
	if pool != nil {
		defer pool.Close()
	}
	source, err := buildLoader(cfg, pool, logger)
	if err != nil {
		logger.Error("failed to build product loader", "error", err)
		os.Exit(1)
	}
	cache := loader.NewCachedLoader(source, cfg.Loader.CacheTTL, logger).WithLoadTimeout(cfg.Loader.LoadTimeout)

	// Event publishing.
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled {
		kp := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		defer func() { _ = kp.Close() }() //nolint:errcheck // best-effort writer flush
		publisher = kp
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}

	// Domain services and use cases.
	riskModel, err := service.NewRiskModel(cfg.Model.BoostingParams())
	if err != nil {
		logger.Error("invalid model parameters", "error", err)
		os.Exit(1)
	}
	builder := service.NewFeatureBuilder(cfg.Model.Workers)
	store := service.NewModelStore()
	scoring := service.NewScoringService(builder, cfg.Reports.TrendSeed)
	recorder := metrics.NewRecorder()

	trainUC := usecase.NewTrainModel(cache.Refresher(), publisher, builder, service.NewHeuristicLabeler(),
		riskModel, store, scoring, recorder, logger)
	reportUC := usecase.NewGetRiskReport(cache, store, scoring, recorder)

	// gRPC server.
	grpcHandler := grpcPresentation.NewDeadStockHandler(reportUC, trainUC, cfg.Model.TrainTimeout, logger)
	grpcServer := grpcPresentation.NewServer(grpcHandler, logger)

	// HTTP server.
	router := rest.NewRouter(
		rest.RouterConfig{CORSOrigins: cfg.Server.CORSOrigins, RateLimit: cfg.Server.RateLimit},
		rest.NewReportHandler(reportUC, trainUC, export.NewExcelExporter(), cfg.Model.TrainTimeout, logger),
		rest.NewHealthHandler(store, logger),
		logger,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// Initial training; the service starts unready when it fails.
	train(ctx, trainUC, cfg.Model.TrainTimeout, logger)
	go watchReadiness(ctx, store, grpcServer)
	if cfg.Model.RetrainInterval > 0 {
		go retrainLoop(ctx, trainUC, cfg.Model.RetrainInterval, cfg.Model.TrainTimeout, logger)
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddress()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.Server.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("deadstock-service stopped")
}

// connectDatabase returns nil when the database is disabled or unreachable
// and the synthetic fallback may take over.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	if !cfg.Database.Enabled {
		logger.Info("database disabled, serving synthetic products")
		return nil
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer dbCancel()

	pool, err := pgRepo.NewPool(dbCtx, pgRepo.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		if !cfg.Loader.SyntheticFallback {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to connect to database, serving synthetic products", "error", err)
		return nil
	}
	logger.Info("connected to database")

	if cfg.Database.Migrate {
		if err := pgRepo.RunMigrations(cfg.Database.URL); err != nil {
			logger.Warn("migration warning", "error", err)
		}
	}
	return pool
}

func buildLoader(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (port.ProductLoader, error) {
	synthetic := loader.NewSyntheticLoader(cfg.Loader.SyntheticCount, cfg.Loader.SyntheticSeed)

	if pool == nil {
		if !cfg.Loader.SyntheticFallback {
			return nil, errors.New("no product source: database unavailable and synthetic fallback disabled")
		}
		return synthetic, nil
	}

	var source port.ProductLoader = loader.NewBreakerLoader(
		pgRepo.NewProductLoader(pool),
		cfg.Loader.Breaker.LoaderBreaker("postgres"),
		logger,
	)
	if cfg.Loader.SyntheticFallback {
		source = loader.NewFallbackLoader(source, synthetic, "synthetic", logger)
	}
	return source, nil
}

func train(ctx context.Context, uc *usecase.TrainModel, timeout time.Duration, logger *slog.Logger) {
	trainCtx, trainCancel := context.WithTimeout(ctx, timeout)
	defer trainCancel()

	if _, err := uc.Execute(trainCtx); err != nil {
		logger.Warn("model training failed", "error", err)
	}
}

func retrainLoop(ctx context.Context, uc *usecase.TrainModel, interval, timeout time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			train(ctx, uc, timeout, logger)
		}
	}
}

// watchReadiness marks the gRPC health service as serving once any training
// path has published a model.
func watchReadiness(ctx context.Context, store *service.ModelStore, srv *grpcPresentation.Server) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if store.Ready() {
			srv.SetReady(true)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
