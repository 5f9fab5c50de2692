package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/bookindex/internal"
	pkgconfig "github.com/starford/bookindex/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// loadConfig reads the config file, falling back to defaults when it does
// not exist, and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if v := cmd.String("vault"); v != "" {
		cfg.Vault.Path = v
	}
	if v := cmd.String("output"); v != "" {
		cfg.Vault.Output = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithPreprocessorTable(cmd.String("table")),
	}, nil
}

func preprocess(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Preprocess(ctx, os.Stdin, os.Stdout, opts...); err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	return nil
}

func supports(_ context.Context, cmd *cli.Command) error {
	renderer := cmd.Args().First()
	if renderer == "" {
		return cli.Exit("renderer name is required", 2)
	}
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	ok, err := internal.Supports(renderer, opts...)
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	res, err := internal.Build(ctx, opts...)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Fprintf(os.Stdout, "indexed %d chapters: %d tags, %d mentions (%d written, %d unchanged, %d removed)\n",
		res.Run.Chapters, res.Run.Tags, res.Run.Mentions,
		res.Output.Written, res.Output.Unchanged, res.Output.Removed)
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	vaultFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "vault",
			Usage:   "Directory of Markdown chapters (overrides vault.path)",
			Sources: cli.EnvVars("APP_VAULT_PATH"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory for processed chapters (overrides vault.output)",
			Sources: cli.EnvVars("APP_VAULT_OUTPUT"),
		},
	}

	cmd := &cli.Command{
		Name:    "bookindex",
		Usage:   "mdBook preprocessor that indexes #tags and @mentions",
		Version: version,
		Action:  preprocess,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "table",
				Usage:   "book.toml table to read options from, [preprocessor.<table>]",
				Value:   "indexer",
				Sources: cli.EnvVars("APP_PREPROCESSOR_TABLE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "supports",
				Usage:     "Exit 0 if the renderer is supported, 1 otherwise",
				ArgsUsage: "<renderer>",
				Action:    supports,
			},
			{
				Name:   "build",
				Usage:  "Index a chapter directory once and write the processed chapters",
				Flags:  vaultFlags,
				Action: build,
			},
			{
				Name:   "serve",
				Usage:  "Watch a chapter directory and serve the index over HTTP",
				Flags:  vaultFlags,
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the index as MCP tools on stdio",
				Flags:  vaultFlags,
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
