/*
Copyright © 2025 the fleethealth authors
SPDX-License-Identifier: Apache-2.0
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/fleetops/fleethealth/pkg/exporter"
	"github.com/fleetops/fleethealth/pkg/logging"
)

const name = "fleethealthd"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    name,
		Usage:   "Fleet health metrics exporter",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "exporter configuration file (yaml)",
				Sources: cli.EnvVars("FLEETHEALTHD_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logging.SetDefaultStructuredLoggerWithLevel(
		name, version, cmd.String("log-level"))

	cfg := exporter.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := exporter.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.Info("configuration loaded", "path", path)
	}

	store, err := exporter.NewStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	return exporter.NewServer(cfg, store).Run(ctx)
}
