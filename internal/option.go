package internal

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/starford/bookindex/internal/indexer"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	logOut  io.Writer
	version string
	table   string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput redirects structured logs. Logs go to stderr by default
// because stdout carries the book in preprocessor mode.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithPreprocessorTable sets the book.toml table, [preprocessor.<name>],
// that indexer options are read from. Defaults to indexer.Name.
func WithPreprocessorTable(name string) Option {
	return func(a *application) {
		if name != "" {
			a.table = name
		}
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOut: os.Stderr, version: "dev", table: indexer.Name}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errors.New("config is required")
	}
	return app, nil
}

// logger builds the JSON logger and installs it as the slog default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
