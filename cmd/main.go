package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Dosada05/padel-circuit/config"
)

func main() {
	app := &cli.App{
		Name:  "padel-circuit",
		Usage: "zones, brackets and season points of a padel tournament circuit",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedPointsCommand(),
			topologyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig загружает конфигурацию и настраивает логгер.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, newLogger(cfg), nil
}
