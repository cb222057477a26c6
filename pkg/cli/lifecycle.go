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
	"github.com/fleetops/fleethealth/pkg/deploy"
	"github.com/fleetops/fleethealth/pkg/target"
)

// lifecycleFlags are shared by the pod lifecycle commands.
var lifecycleFlags = []cli.Flag{
	serverFlag,
	sshUserFlag,
	sshPortFlag,
	sshKeyFlag,
}

func startCmd() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start a previously deployed diagnostic pod",
		Flags: lifecycleFlags,
		Action: lifecycleAction(func(ctx context.Context, dep *deploy.Deployment) error {
			return dep.Start(ctx)
		}),
	}
}

func stopCmd() *cli.Command {
	return &cli.Command{
		Name:  "stop",
		Usage: "Stop the diagnostic pod, keeping its state",
		Flags: lifecycleFlags,
		Action: lifecycleAction(func(ctx context.Context, dep *deploy.Deployment) error {
			return dep.Stop(ctx)
		}),
	}
}

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove the diagnostic pod and its configuration",
		Flags: lifecycleFlags,
		Action: lifecycleAction(func(ctx context.Context, dep *deploy.Deployment) error {
			return dep.Clean(ctx, deploy.Options{})
		}),
	}
}

func lifecycleAction(fn func(context.Context, *deploy.Deployment) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		c := checker.New(checker.Options{
			Server: cmd.String("server"),
			SSH:    sshConfig(cmd),
		})

		dep, runner, err := c.Deployment()
		if err != nil {
			return err
		}
		defer closeRunner(runner)

		return fn(ctx, dep)
	}
}

func closeRunner(runner target.Runner) {
	if err := runner.Close(); err != nil {
		slog.Warn("failed to close runner", "error", err)
	}
}
