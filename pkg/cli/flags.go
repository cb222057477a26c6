/*
Copyright © 2025 the fleethealth authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/serializer"
	"github.com/fleetops/fleethealth/pkg/target"
)

// Flags shared across commands.
var (
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Sources: cli.EnvVars("LOG_LEVEL"),
		Value:   "info",
	}

	serverFlag = &cli.StringFlag{
		Name:    "server",
		Usage:   "fleet server to diagnose; localhost runs everything locally",
		Sources: cli.EnvVars("FLEETHEALTH_SERVER"),
		Value:   "localhost",
	}

	sshUserFlag = &cli.StringFlag{
		Name:    "ssh-user",
		Usage:   "SSH user for remote servers",
		Sources: cli.EnvVars("FLEETHEALTH_SSH_USER"),
		Value:   "root",
	}

	sshPortFlag = &cli.IntFlag{
		Name:  "ssh-port",
		Usage: "SSH port for remote servers",
		Value: 22,
	}

	sshKeyFlag = &cli.StringFlag{
		Name:    "ssh-key",
		Usage:   "SSH private key path; default key locations are tried when empty",
		Sources: cli.EnvVars("FLEETHEALTH_SSH_KEY"),
	}

	exporterPortFlag = &cli.IntFlag{
		Name:  "exporter-port",
		Usage: "port of the metrics exporter",
		Value: defaults.ExporterPort,
	}

	targetCountFlag = &cli.IntFlag{
		Name:  "target-count",
		Usage: "expected number of log shipper scrape targets",
		Value: defaults.ShipperTargets,
	}

	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "bound on the log pipeline readiness wait",
		Value: defaults.ReadinessTimeout,
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "output format (json, yaml, table)",
		Value: string(serializer.FormatJSON),
	}

	outputFlag = &cli.StringFlag{
		Name:  "output",
		Usage: "output file path; empty writes to stdout",
	}

	sinceFlag = &cli.DurationFlag{
		Name:  "since",
		Usage: "window for error-log statistics",
		Value: time.Duration(defaults.LogStatsSinceDays) * 24 * time.Hour,
	}

	logsFlag = &cli.BoolFlag{
		Name:  "logs",
		Usage: "include error-log statistics in the report",
	}

	skipDeployFlag = &cli.BoolFlag{
		Name:  "skip-deploy",
		Usage: "assume the diagnostic pod is already running",
	}

	cleanFlag = &cli.BoolFlag{
		Name:  "clean",
		Usage: "remove the diagnostic pod after the report is built",
	}
)

func sshConfig(cmd *cli.Command) target.SSHConfig {
	return target.SSHConfig{
		User:    cmd.String("ssh-user"),
		Port:    int(cmd.Int("ssh-port")),
		KeyPath: cmd.String("ssh-key"),
	}
}
