package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"newsletter-api/internal/config"
	pgRepo "newsletter-api/internal/infra/adapter/persistence/postgres"
	"newsletter-api/internal/infra/db"
	"newsletter-api/internal/metrics"
	"newsletter-api/internal/observability/logging"
	"newsletter-api/internal/observability/tracing"
	"newsletter-api/internal/resilience/circuitbreaker"
	pkgconfig "newsletter-api/pkg/config"

	hhttp "newsletter-api/internal/handler/http"
	hauth "newsletter-api/internal/handler/http/auth"
	"newsletter-api/internal/handler/http/requestid"
)

func main() {
	logger := logging.NewLogger()

	cfg := loadConfig(logger)
	token := validateToken(logger, cfg)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, cfg, token, version)

	runServer(logger, handler, version)
}

// loadConfig loads the metrics subsystem configuration. METRICS_CONFIG_PATH
// points at a YAML file; without it the env-derived defaults apply.
func loadConfig(logger *slog.Logger) *config.MetricsConfig {
	path := os.Getenv("METRICS_CONFIG_PATH")
	if path == "" {
		cfg := config.DefaultMetricsConfig()
		logger.Info("using default metrics configuration",
			slog.String("environment", cfg.GetEnvironment()))
		return cfg
	}

	cfg, err := config.LoadMetricsConfig(path)
	if err != nil {
		logger.Error("failed to load metrics configuration",
			slog.String("path", path),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("metrics configuration loaded",
		slog.String("path", path),
		slog.String("environment", cfg.GetEnvironment()))
	return cfg
}

// validateToken validates the bearer secret at startup. The server must not
// come up without a usable token: every metrics route depends on it.
func validateToken(logger *slog.Logger, cfg *config.MetricsConfig) string {
	token, err := hauth.ValidateMetricsToken(cfg.GetTokenEnv())
	if err != nil {
		logger.Error("metrics token validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	return token
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires the collector, auth gate and route table, then applies
// the middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, cfg *config.MetricsConfig, token, version string) http.Handler {
	breaker := circuitbreaker.NewDBCircuitBreakerWithConfig(database, circuitbreaker.DBConfig())
	repo := pgRepo.NewSubscriberRepoWithBreaker(breaker)

	collector := metrics.NewCollector(repo, cfg.GetEnvironment(), cfg.GetCollectTimeout(), logger)

	router := hhttp.NewRouter(hhttp.RouterConfig{
		Collector:    collector,
		Gate:         hauth.NewGate(token),
		DB:           database,
		Environment:  cfg.GetEnvironment(),
		Version:      version,
		MaxSamples:   cfg.GetMaxSamples(),
		RateLimit:    cfg.Metrics.Query.RateLimit,
		RateBurst:    cfg.Metrics.Query.RateBurst,
		BreakerState: breaker.State,
	})

	return applyMiddleware(logger, router)
}

// applyMiddleware wraps the handler with the middleware chain, applied in
// reverse so the first listed runs outermost:
// Request ID -> Tracing -> Recovery -> Logging -> Body Limit -> Metrics -> routes.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := pkgconfig.GetEnvString("LISTEN_ADDR", ":8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
