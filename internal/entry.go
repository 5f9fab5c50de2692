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

	"github.com/starford/bookindex/internal/api"
	"github.com/starford/bookindex/internal/apperr"
	"github.com/starford/bookindex/internal/book"
	"github.com/starford/bookindex/internal/catalog"
	"github.com/starford/bookindex/internal/indexer"
	"github.com/starford/bookindex/internal/indexservice"
	"github.com/starford/bookindex/internal/mcpserver"
	"github.com/starford/bookindex/internal/sse"
	"github.com/starford/bookindex/internal/storage"
	"github.com/starford/bookindex/internal/vault"
)

// Supports reports whether the indexer runs before renderer.
func Supports(renderer string, opts ...Option) (bool, error) {
	app, err := newApplication(opts)
	if err != nil {
		return false, err
	}
	return indexer.New(app.config.Indexer, nil).SupportsRenderer(renderer), nil
}

// Preprocess runs the indexer once as an mdBook preprocessor: it reads the
// [context, book] pair from in and writes the processed book to out.
// Options from the [preprocessor.<table>] table in book.toml override the
// config file; the table name defaults to indexer.Name.
func Preprocess(_ context.Context, in io.Reader, out io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	bctx, b, err := book.ParseInput(in)
	if err != nil {
		return err
	}

	indexOpts := app.config.Indexer
	table := bctx.PreprocessorConfig(app.table)
	if table == nil {
		logger.Warn("no book.toml options table, using configured defaults",
			slog.String("table", "preprocessor."+app.table))
	}
	if err := indexOpts.Overlay(table); err != nil {
		return err
	}
	if err := indexOpts.Validate(); err != nil {
		return fmt.Errorf("%w: indexer options: %v", apperr.ErrInvalidInput, err)
	}

	proc := indexer.New(indexOpts, logger)
	if !proc.SupportsRenderer(bctx.Renderer) {
		logger.Warn("renderer not supported, passing book through",
			slog.String("renderer", bctx.Renderer))
		return book.WriteOutput(out, b)
	}

	processed, _, err := proc.Run(b)
	if err != nil {
		return err
	}
	return book.WriteOutput(out, processed)
}

// Build indexes the vault once, writes processed chapters to the output
// directory and returns the run summary.
func Build(ctx context.Context, opts ...Option) (*indexservice.RebuildResult, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	logger := app.logger()

	svc, db, err := openService(app.config, logger)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return svc.Rebuild(ctx)
}

// Serve builds the index, then watches the vault and serves the catalog over
// HTTP until ctx is cancelled or a shutdown signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("output_path", cfg.Vault.Output),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, err := openService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	broker := sse.NewBroker()
	defer broker.Close()

	// Initial build; a broken chapter set should not keep the server down.
	if res, err := svc.Rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	} else {
		broker.PublishRebuild(res)
	}

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
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.Status(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"not indexed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault; every burst of changes triggers a full rebuild.
	g.Go(func() error {
		var ignore []string
		if cfg.Vault.Output != "" {
			ignore = append(ignore, cfg.Vault.Output)
		}
		return vault.Watch(gCtx, cfg.Vault.Path, logger, vault.DefaultDebounce, func(changes []vault.Change) {
			for _, c := range changes {
				broker.PublishChange(c.Kind, c.Path)
			}
			res, err := svc.Rebuild(gCtx)
			if err != nil {
				logger.Error("rebuild failed", slog.String("error", err.Error()))
				broker.PublishFailure(err)
				return
			}
			broker.PublishRebuild(res)
		}, ignore...)
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stop the watcher as well when the signal arrived first.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// ServeMCP builds the index and serves it as MCP tools on stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	svc, db, err := openService(app.config, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := svc.Rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc, app.version).ServeStdio()
}

// openService wires storage, catalog and indexer for the vault commands.
func openService(cfg *Config, logger *slog.Logger) (*indexservice.Service, *catalog.DB, error) {
	source, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init source: %w", err)
	}

	var output storage.Provider
	if cfg.Vault.Output != "" {
		if err := os.MkdirAll(cfg.Vault.Output, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Vault.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("init output: %w", err)
		}
		output = fs
	}

	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init catalog: %w", err)
	}

	proc := indexer.New(cfg.Indexer, logger)
	return indexservice.NewService(source, output, db, proc, logger), db, nil
}
