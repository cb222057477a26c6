/*
Copyright © 2025 the fleethealth authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/fleetops/fleethealth/pkg/logging"
)

const (
	name           = "fleethealth"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Fleet server health check",
		Version: version,
		Description: fmt.Sprintf(`fleethealth - fleet server health check

Version: %s
Commit:  %s
Built:   %s

Deploys a diagnostic pod (log ingest, log shipper, metrics exporter,
dashboards) next to a fleet server, waits for the log pipeline to
converge, and builds a health report from the exporter's metrics.`,
			version, commit, date),
		Flags: []cli.Flag{
			logLevelFlag,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(
				name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			runCmd(),
			startCmd(),
			stopCmd(),
			cleanCmd(),
		},
	}
}

// Execute runs the CLI. It is called by main.main and handles SIGINT and
// SIGTERM for graceful shutdown.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
