// Copyright (c) 2025, the fleethealth authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package checker orchestrates a full diagnostic run: deploy the pod,
// wait for the log pipeline to converge while fetching exporter metrics,
// gather service and log statistics, and assemble the health report.
package checker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/deploy"
	"github.com/fleetops/fleethealth/pkg/fetcher"
	"github.com/fleetops/fleethealth/pkg/logquery"
	"github.com/fleetops/fleethealth/pkg/readiness"
	"github.com/fleetops/fleethealth/pkg/report"
	"github.com/fleetops/fleethealth/pkg/services"
	"github.com/fleetops/fleethealth/pkg/target"
)

// Options configure a diagnostic run.
type Options struct {
	// Server is the fleet server to diagnose. "localhost" (or empty)
	// runs everything locally; anything else is reached over SSH.
	Server string

	// ExporterPort is the port of the metrics exporter.
	ExporterPort int

	// TargetCount is the expected number of shipper scrape targets.
	TargetCount int

	// Timeout bounds the readiness wait.
	Timeout time.Duration

	// Since is the error-log statistics window.
	Since time.Duration

	// WithLogs requests error-log statistics in the report.
	WithLogs bool

	// SkipDeploy assumes the diagnostic pod is already running.
	SkipDeploy bool

	// CleanAfter removes the pod once the report is built.
	CleanAfter bool

	// Deploy tunes the pod deployment.
	Deploy deploy.Options

	// SSH configures the remote connection for non-local servers.
	SSH target.SSHConfig

	// Version is the tool version recorded in the report.
	Version string
}

func (o *Options) withDefaults() {
	if o.Server == "" {
		o.Server = "localhost"
	}
	if o.ExporterPort == 0 {
		o.ExporterPort = defaults.ExporterPort
	}
	if o.TargetCount == 0 {
		o.TargetCount = defaults.ShipperTargets
	}
	if o.Timeout == 0 {
		o.Timeout = defaults.ReadinessTimeout
	}
	if o.Since == 0 {
		o.Since = time.Duration(defaults.LogStatsSinceDays) * 24 * time.Hour
	}
}

func (o *Options) local() bool {
	return o.Server == "localhost" || o.Server == "127.0.0.1"
}

// Checker runs diagnostics against one fleet server.
type Checker struct {
	opts Options
}

// New creates a Checker, filling unset options with defaults.
func New(opts Options) *Checker {
	opts.withDefaults()
	return &Checker{opts: opts}
}

// Run executes the diagnostic pipeline and returns the health report.
// The readiness wait and the metrics fetch run concurrently; either
// failing aborts the run.
func (c *Checker) Run(ctx context.Context) (*report.HealthReport, error) {
	start := time.Now()

	runner, err := c.runner()
	if err != nil {
		observeRun(statusError, start)
		return nil, err
	}
	defer runner.Close()

	dep := deploy.New(runner)
	if !c.opts.SkipDeploy {
		if err := dep.Deploy(ctx, c.opts.Deploy); err != nil {
			observeRun(statusError, start)
			return nil, err
		}
	}

	var snap *fetcher.Snapshot
	monitor := readiness.NewMonitor(c.opts.Server, c.opts.TargetCount, c.opts.Timeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Await(gctx)
	})
	g.Go(func() error {
		var fetchErr error
		snap, fetchErr = fetcher.New().Fetch(gctx, c.opts.Server, c.opts.ExporterPort)
		return fetchErr
	})
	if err := g.Wait(); err != nil {
		observeRun(statusError, start)
		return nil, err
	}

	builder := report.NewBuilder(c.opts.Server, c.opts.Version).
		WithSnapshot(snap)

	statuses, err := c.checkServices(ctx, runner)
	if err != nil {
		// degraded report rather than a failed run
		slog.Warn("service check failed, omitting from report", "error", err)
	} else {
		builder.WithServices(statuses)
	}

	if c.opts.WithLogs {
		stats, err := logquery.NewClient(c.opts.Server).ErrorStats(ctx, c.opts.Since)
		if err != nil {
			slog.Warn("log statistics query failed, omitting from report", "error", err)
		} else {
			builder.WithLogStats(stats)
		}
	}

	if c.opts.CleanAfter {
		if err := dep.Clean(ctx, c.opts.Deploy); err != nil {
			slog.Warn("failed to clean up diagnostic pod", "error", err)
		}
	}

	observeRun(statusSuccess, start)
	return builder.Build(), nil
}

// Deployment returns a Deployment for lifecycle commands (start, stop,
// clean) on the configured server. The caller owns closing the runner.
func (c *Checker) Deployment() (*deploy.Deployment, target.Runner, error) {
	runner, err := c.runner()
	if err != nil {
		return nil, nil, err
	}
	return deploy.New(runner), runner, nil
}

func (c *Checker) runner() (target.Runner, error) {
	if c.opts.local() {
		return target.NewLocalRunner(), nil
	}
	cfg := c.opts.SSH
	cfg.Host = c.opts.Server
	return target.NewSSHRunner(cfg)
}

func (c *Checker) checkServices(ctx context.Context, runner target.Runner) ([]services.Status, error) {
	checker := &services.Checker{}
	if c.opts.local() {
		return checker.CheckLocal(ctx)
	}
	return checker.CheckRemote(ctx, runner)
}
