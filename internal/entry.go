// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/foldernotes/internal/api"
	"github.com/starford/foldernotes/internal/index"
	"github.com/starford/foldernotes/internal/mcpserver"
	"github.com/starford/foldernotes/internal/noteservice"
	"github.com/starford/foldernotes/internal/sse"
	"github.com/starford/foldernotes/internal/state"
	"github.com/starford/foldernotes/internal/storage"
)

// components are the pieces shared by the HTTP and MCP front ends.
type components struct {
	logger *slog.Logger
	state  *state.State
	store  *storage.Store
	db     *index.DB
}

func (c *components) Close() {
	if err := c.db.Close(); err != nil {
		c.logger.Warn("index close failed", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option, defaultLog io.Writer) (*application, error) {
	app := &application{version: "dev", logOutput: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// bootstrap opens the workspace state, the store and the search index, and
// runs the initial index sync.
func (a *application) bootstrap() (*components, error) {
	cfg := a.config

	logger := newLogger(cfg.App, a.logOutput)
	slog.SetDefault(logger)

	initial := cfg.Workspace.Dir()
	st, err := state.Open(cfg.Workspace.StateFile, initial)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("workspace", st.Workspace()),
		slog.String("state_file", cfg.Workspace.StateFile),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Only the configured default is created; a remembered workspace that
	// disappeared is reported as not found instead.
	if st.Workspace() == initial {
		if err := os.MkdirAll(initial, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace dir: %w", err)
		}
	}

	store := storage.NewStore(st)

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &components{logger: logger, state: st, store: store, db: db}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer c.Close()
	logger := c.logger

	broker := sse.NewBroker(cfg.Events.ClientBuffer, cfg.Events.Heartbeat)
	defer broker.Close()

	svc := noteservice.NewService(c.store, c.state, c.db, logger,
		noteservice.NotifierFunc(func(e noteservice.Event) {
			broker.Publish(sse.Event{Type: e.Type, Data: e})
		}),
	)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", readyHandler(c.db))

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown does not wait on them.
		broker.Close()

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

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr so they
// never mix with the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}

	c, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer c.Close()

	svc := noteservice.NewService(c.store, c.state, c.db, c.logger)
	srv := mcpserver.New(svc, app.version, c.logger)

	c.logger.Info("Starting MCP server on stdio")
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func readyHandler(db index.NoteIndex) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		n, err := db.Count()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","notes":%d}`, n)
	}
}
