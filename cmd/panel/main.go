package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"article-panel/internal/config"
	hhttp "article-panel/internal/handler/http"
	hpanel "article-panel/internal/handler/http/panel"
	"article-panel/internal/handler/http/requestid"
	"article-panel/internal/infra/articleapi"
	"article-panel/internal/observability/logging"
	"article-panel/internal/observability/tracing"
	"article-panel/internal/panel"
	"article-panel/pkg/security/csp"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.LoadPanelConfig(os.Getenv("PANEL_CONFIG"))
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	handler, err := setupServer(logger, cfg)
	if err != nil {
		logger.Error("failed to set up panel", slog.Any("error", err))
		os.Exit(1)
	}

	runServer(logger, cfg, handler)
}

// setupServer wires the controller to the article service and returns the
// fully wrapped HTTP handler.
func setupServer(logger *slog.Logger, cfg *config.PanelConfig) (http.Handler, error) {
	client, err := articleapi.NewClient(articleapi.Config{
		BaseURL: cfg.ArticleAPI.BaseURL,
		Timeout: cfg.ArticleAPI.Timeout,
	}, &http.Client{
		Timeout:   cfg.ArticleAPI.Timeout,
		Transport: &requestid.Transport{Base: &tracing.Transport{}},
	})
	if err != nil {
		return nil, err
	}

	page := panel.NewPage()
	controller, err := panel.NewController(panel.Deps{
		Dialog:   page,
		Results:  page,
		Notifier: page,
		Browser:  page,
		Service:  client,
		Metrics:  panel.NewPrometheusMetrics(),
		Logger:   logger,
	}, panel.Config{ExternalPageURL: cfg.ExternalPageURL})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{Version: os.Getenv("VERSION")})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	hpanel.Register(mux, controller, page, logger)

	logger.Info("panel configured",
		slog.String("article_api", cfg.ArticleAPI.BaseURL),
		slog.Duration("article_api_timeout", cfg.ArticleAPI.Timeout),
		slog.String("external_page", cfg.ExternalPageURL))

	routes := append([]string{"/health", "/live", "/metrics"}, hpanel.Routes...)
	return hhttp.Chain(mux,
		requestid.Middleware,
		logging.Middleware(logger),
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		tracing.Middleware,
		hhttp.NewRequestMetrics(prometheus.DefaultRegisterer).Middleware(routes...),
		hhttp.CSP(csp.PagePolicy),
		hhttp.LimitRequestBody(64<<10),
	), nil
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.PanelConfig, handler http.Handler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("panel starting", slog.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down panel...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("panel stopped")
}
