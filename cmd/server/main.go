package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"doctrack/internal/catalog"
	"doctrack/internal/config"
	"doctrack/internal/handler"
	"doctrack/internal/jobs"
	"doctrack/internal/middleware"
	"doctrack/internal/repository/postgres"
	postgresTracking "doctrack/internal/repository/postgres/tracking"
	serviceTracking "doctrack/internal/service/tracking"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	// LOG_DIR tees logs into timestamped files alongside stdout
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	logger.Info("database connected")

	// Reference catalog (departments, categories, statuses)
	catalogRegistry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresTracking.NewDocumentRepository(repoConfig)

	// Services
	idGen := serviceTracking.NewIDGenerator(docRepo)
	docService := serviceTracking.NewDocumentService(docRepo, idGen, catalogRegistry, logger)
	lifecycle := serviceTracking.NewLifecycleEngine(docRepo, logger)
	recalc := serviceTracking.NewBottleneckRecalculator(docRepo, cfg.BottleneckThreshold, cfg.SweepTimeout, logger)

	// Bottleneck sweep: once at startup, then on schedule
	scheduler := jobs.NewBottleneckScheduler(recalc, cfg.BottleneckSchedule, logger)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start bottleneck scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Handlers
	docHandler := handler.NewDocumentHandler(docService, lifecycle, logger)
	jobsHandler := handler.NewJobsHandler(recalc, cfg.JobToken, logger)
	catalogHandler := handler.NewCatalogHandler(catalogRegistry)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", docHandler.HealthCheck)
	mux.HandleFunc("GET /api/v1/catalog", catalogHandler.GetCatalog)

	// Document routes
	mux.HandleFunc("POST /api/v1/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/v1/documents", docHandler.SearchDocuments)
	mux.HandleFunc("POST /api/v1/documents/scan", docHandler.RegisterScan) // before {id}
	mux.HandleFunc("GET /api/v1/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("POST /api/v1/documents/{id}/actions", docHandler.ApplyAction)

	// Job trigger routes
	mux.HandleFunc("POST /api/v1/jobs/bottlenecks", jobsHandler.TriggerBottleneckSweep)

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS → request log → recovery → bearer actor → routes
	var httpHandler http.Handler = mux
	httpHandler = middleware.BearerActor(cfg.AuthSecret, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)
	httpHandler = middleware.RequestLog(logger)(httpHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Job-Token"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shut down cleanly on SIGINT/SIGTERM so in-flight actions finish
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
