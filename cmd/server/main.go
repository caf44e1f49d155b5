package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awickham/feedforge/internal/completion"
	"github.com/awickham/feedforge/internal/config"
	"github.com/awickham/feedforge/internal/db"
	"github.com/awickham/feedforge/internal/enrich"
	"github.com/awickham/feedforge/internal/export"
	"github.com/awickham/feedforge/internal/filestore"
	"github.com/awickham/feedforge/internal/ingest"
	"github.com/awickham/feedforge/internal/media"
	"github.com/awickham/feedforge/internal/middleware"
	"github.com/awickham/feedforge/internal/monitoring"
	"github.com/awickham/feedforge/internal/prompt"
	"github.com/awickham/feedforge/internal/repository"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rawStore, err := filestore.New(cfg.Storage.UploadsDir)
	if err != nil {
		logger.Fatal("failed to initialize upload store", zap.Error(err))
	}

	metrics := monitoring.New()

	// Repositories
	fileRepo := repository.NewSourceFileRepository(conn.Pool)
	productRepo := repository.NewProductRepository(conn.Pool)
	profileRepo := repository.NewProfileRepository(conn.Pool)
	logRepo := repository.NewProcessingLogRepository(conn.Pool)

	// Services
	ingestService := ingest.NewService(fileRepo, productRepo, rawStore, metrics, logger)
	exportService := export.NewService(fileRepo, productRepo, rawStore, metrics, logger)
	enrichService := enrich.NewService(
		productRepo,
		profileRepo,
		logRepo,
		prompt.NewRegistry(cfg.Processing.TemplatesDir),
		media.NewNormalizer(cfg.Processing.MediaTimeout, cfg.Processing.MediaMaxDim),
		completion.NewClient(cfg.Completion.BaseURL, cfg.Completion.APIKey, cfg.Completion.Timeout),
		metrics,
		logger,
		cfg.Processing.Concurrency,
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	logging := middleware.LoggingMiddleware(logger)

	wrap := func(h http.Handler) http.Handler {
		return corsHandler.Handler(logging(h))
	}

	mux := http.NewServeMux()
	mux.Handle("/ingest", wrap(ingest.NewHTTPHandler(ingestService)))
	mux.Handle("/files", wrap(ingest.NewFilesHandler(fileRepo, rawStore)))
	mux.Handle("/process", wrap(enrich.NewHTTPHandler(enrichService)))
	mux.Handle("/profile", wrap(enrich.NewProfileHandler(profileRepo)))
	mux.Handle("/logs", wrap(enrich.NewLogsHandler(logRepo)))
	mux.Handle("/export", wrap(export.NewHTTPHandler(exportService)))
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
