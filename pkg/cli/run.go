/*
Copyright © 2025 the fleethealth authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/fleetops/fleethealth/pkg/checker"
	"github.com/fleetops/fleethealth/pkg/serializer"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a full health check and print the report",
		Description: `Deploys the diagnostic pod on the target server (unless
--skip-deploy is set), waits for the log pipeline to converge while
fetching exporter metrics, checks the fleet services, and prints the
assembled health report in the requested format.`,
		Flags: []cli.Flag{
			serverFlag,
			exporterPortFlag,
			targetCountFlag,
			timeoutFlag,
			formatFlag,
			outputFlag,
			sinceFlag,
			logsFlag,
			skipDeployFlag,
			cleanFlag,
			sshUserFlag,
			sshPortFlag,
			sshKeyFlag,
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	opts := checker.Options{
		Server:       cmd.String("server"),
		ExporterPort: int(cmd.Int("exporter-port")),
		TargetCount:  int(cmd.Int("target-count")),
		Timeout:      cmd.Duration("timeout"),
		Since:        cmd.Duration("since"),
		WithLogs:     cmd.Bool("logs"),
		SkipDeploy:   cmd.Bool("skip-deploy"),
		CleanAfter:   cmd.Bool("clean"),
		SSH:          sshConfig(cmd),
		Version:      version,
	}

	rep, err := checker.New(opts).Run(ctx)
	if err != nil {
		return err
	}

	w := serializer.NewFileWriterOrStdout(
		serializer.Format(cmd.String("format")), cmd.String("output"))
	if c, ok := w.(serializer.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close report writer", "error", err)
			}
		}()
	}

	return w.Serialize(ctx, rep)
}
