// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/parsecache"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/validator"
)

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildEngine loads the built-in rule set plus any configured rule
// document. An unreadable or invalid rule document is a fatal error.
func buildEngine(cfg *Config, logger *slog.Logger) (*rules.Engine, error) {
	set := rules.Defaults()
	if cfg.Rules.Path != "" {
		user, err := rules.Load(cfg.Rules.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("rules: loaded overrides",
			slog.String("path", cfg.Rules.Path),
			slog.Int("rules", len(user)))
		set = append(set, user...)
	}
	return rules.NewEngine(set, logger), nil
}

func buildValidator(cfg *Config, logger *slog.Logger) (*validator.Validator, storage.Provider, error) {
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cache := parsecache.Open(cfg.Cache.Path)
	return validator.New(store, cache, engine, logger), store, nil
}

// Validate runs one full validation pass and returns the result. Used
// by the one-shot CLI command; the caller decides exit behavior.
func Validate(ctx context.Context, cfg *Config) (*validator.Result, error) {
	logger := newLogger(cfg)
	runner, _, err := buildValidator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	runner, store, err := buildValidator(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run the initial pass so the index serves fresh data.
	if res, runErr := runner.Run(ctx); runErr != nil {
		logger.Warn("initial pass failed", slog.String("error", runErr.Error()))
	} else if err := index.Sync(db, res, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// MCP mode serves tools over stdio instead of HTTP.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(store, db, runner).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router.
	svc := api.NewService(store, db, runner, broker, logger)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher: every vault change triggers a debounced pass
	// whose outcome is indexed and broadcast.
	g.Go(func() error {
		return runner.Watch(gCtx, func(res *validator.Result, changes []validator.Change) {
			if err := index.Sync(db, res, logger); err != nil {
				logger.Warn("watch sync failed", slog.String("error", err.Error()))
			}
			for _, c := range changes {
				broker.PublishDocEvent(c.Kind, c.Path)
			}
			broker.PublishPass(sse.PassSummary{
				Assets:   len(res.Assets),
				Errors:   len(res.Report.Errors()),
				Warnings: len(res.Report.Warnings()),
				Failed:   res.Report.Failed(),
			})
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
