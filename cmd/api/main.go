package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"article-panel/internal/config"
	hhttp "article-panel/internal/handler/http"
	harticle "article-panel/internal/handler/http/article"
	"article-panel/internal/handler/http/requestid"
	pgRepo "article-panel/internal/infra/adapter/persistence/postgres"
	sqliteRepo "article-panel/internal/infra/adapter/persistence/sqlite"
	"article-panel/internal/infra/db"
	"article-panel/internal/infra/discovery"
	"article-panel/internal/infra/fetcher"
	"article-panel/internal/infra/summarizer"
	"article-panel/internal/observability/logging"
	"article-panel/internal/observability/tracing"
	"article-panel/internal/repository"
	artUC "article-panel/internal/usecase/article"
	"article-panel/pkg/ratelimit"
	"article-panel/pkg/security/csp"

	"github.com/prometheus/client_golang/prometheus"
)

// @title           Article Service API
// @version         1.0
// @description     Processes submitted article URLs (fetch, sentiment, bias rating, summary)
// @description     and searches stored articles for the article panel.

// @host      localhost:8080
// @BasePath  /

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database, dialect := initDatabase(logger, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	handler, err := setupServer(ctx, logger, cfg, database, dialect)
	if err != nil {
		logger.Error("failed to set up article service", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(logger, cfg, handler)
}

// initDatabase opens the configured store and runs migrations.
func initDatabase(logger *slog.Logger, cfg *config.APIConfig) (*sql.DB, db.Dialect) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, dialect, err := db.Connect(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database, dialect); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready", slog.String("dialect", string(dialect)))
	return database, dialect
}

func newArticleRepo(database *sql.DB, dialect db.Dialect) repository.ArticleRepository {
	if dialect == db.DialectPostgres {
		return pgRepo.NewArticleRepo(database)
	}
	return sqliteRepo.NewArticleRepo(database)
}

// setupServer wires the article service and returns the fully wrapped HTTP handler.
func setupServer(ctx context.Context, logger *slog.Logger, cfg *config.APIConfig, database *sql.DB, dialect db.Dialect) (http.Handler, error) {
	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	fetchCfg.DenyPrivateIPs = cfg.DenyPrivateURLs
	contentFetcher := fetcher.NewReadabilityFetcher(fetchCfg)

	sumCfg, err := summarizer.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	sum, err := summarizer.New(sumCfg)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}

	discCfg, err := discovery.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	svcCfg := artUC.DefaultConfig()
	svcCfg.DenyPrivateURLs = cfg.DenyPrivateURLs
	svcCfg.SearchLimit = cfg.SearchLimit
	opts := []artUC.Option{artUC.WithMetrics(artUC.PrometheusMetrics{})}

	checks := map[string]hhttp.Checker{
		"article_fetch": hhttp.BreakerCheck(contentFetcher.CircuitBreaker()),
	}
	if discCfg.Enabled {
		provider := discovery.NewFeedProvider(discCfg, &http.Client{
			Timeout:   discCfg.Timeout,
			Transport: &requestid.Transport{Base: &tracing.Transport{}},
		})
		opts = append(opts, artUC.WithDiscovery(provider))
		checks["news_discovery"] = hhttp.BreakerCheck(provider.CircuitBreaker())
	}

	svc := artUC.NewService(newArticleRepo(database, dialect), contentFetcher, sum, svcCfg, opts...)

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Version: cfg.Version, Checks: checks})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	harticle.Register(mux, svc)

	logger.Info("article service configured",
		slog.String("summarizer", string(sumCfg.Type)),
		slog.Bool("discovery", discCfg.Enabled),
		slog.Bool("deny_private_urls", cfg.DenyPrivateURLs),
		slog.Int("search_limit", cfg.SearchLimit),
		slog.Any("cors_allowed_origins", cfg.CORSAllowedOrigins))

	routes := append([]string{"/health", "/live", "/metrics"}, harticle.Routes...)
	mws := []hhttp.Middleware{
		hhttp.CORS(hhttp.DefaultCORSConfig(cfg.CORSAllowedOrigins)),
		requestid.Middleware,
		logging.Middleware(logger),
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		tracing.Middleware,
		hhttp.NewRequestMetrics(prometheus.DefaultRegisterer).Middleware(routes...),
		hhttp.SecurityHeaders(csp.StrictPolicy()),
	}
	if cfg.RateLimit.Enabled {
		mw, err := newRateLimit(ctx, cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	mws = append(mws,
		hhttp.LimitRequestBody(64<<10),
		hhttp.Timeout(cfg.RequestTimeout),
	)
	return hhttp.Chain(mux, mws...), nil
}

// newRateLimit limits /process-url per client IP. Expired entries are dropped
// every window until ctx is done.
func newRateLimit(ctx context.Context, cfg ratelimit.Config) (hhttp.Middleware, error) {
	metrics := ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	store := ratelimit.NewMemoryStore(ratelimit.DefaultMaxKeys)
	store.OnEvict(metrics.RecordEviction)

	limiter, err := ratelimit.NewSlidingWindow(cfg, store, nil)
	if err != nil {
		return nil, fmt.Errorf("create rate limiter: %w", err)
	}
	go limiter.RunCleanup(ctx, cfg.Window, metrics)

	slog.Info("rate limiting enabled",
		slog.Int("limit", cfg.Limit),
		slog.Duration("window", cfg.Window))
	return hhttp.RateLimit(limiter, metrics, "/process-url"), nil
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.APIConfig, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("article service starting",
			slog.String("addr", cfg.ListenAddr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down article service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("article service stopped")
}
