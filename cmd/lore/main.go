package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lore/internal"
	pkgconfig "github.com/starford/lore/pkg/config"
)

// loadConfig falls back to built-in defaults when the config file is missing.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	found, err := pkgconfig.LoadIfExists(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", path))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// readInput returns the named file, or stdin when no file is given.
func readInput(cmd *cli.Command) ([]byte, error) {
	if name := cmd.Args().First(); name != "" && name != "-" {
		return os.ReadFile(name)
	}
	return io.ReadAll(os.Stdin)
}

func redact(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pipe, err := cfg.Pipeline.Build()
	if err != nil {
		return err
	}
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	res := pipe.Redact(string(data))
	if _, err := io.WriteString(os.Stdout, res.Text); err != nil {
		return err
	}
	attrs := make([]any, 0, len(res.Replacements)+1)
	attrs = append(attrs, slog.Int("total", res.Total()))
	for c, n := range res.Replacements {
		if n > 0 {
			attrs = append(attrs, slog.Int(string(c), n))
		}
	}
	slog.Info("redaction complete", attrs...)
	return nil
}

func extract(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pipe, err := cfg.Pipeline.Build()
	if err != nil {
		return err
	}
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	out, err := pipe.Process(data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Cards)
}

func main() {
	// Subcommands that write to stdout keep logs on stderr.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cmd := &cli.Command{
		Name:   "lore",
		Usage:  "Markdown knowledge base that redacts sensitive data and turns notes into flashcards",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, vault watcher and event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdio",
				Action: mcp,
			},
			{
				Name:      "redact",
				Usage:     "Print a redacted copy of a file (stdin when omitted)",
				ArgsUsage: "[file]",
				Action:    redact,
			},
			{
				Name:      "extract",
				Usage:     "Redact a note and print its flashcards as JSON",
				ArgsUsage: "[file]",
				Action:    extract,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
