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

// Package deploy provisions the diagnostic pod on a fleet server: the log
// ingest pipeline, the log shipper, the metrics exporter, and the
// dashboard containers, all managed through thin podman invocations on a
// target Runner.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
	"github.com/fleetops/fleethealth/pkg/target"
)

// PodName is the name of the diagnostic pod on the target host.
const PodName = "fleethealth"

// Container names within the pod.
const (
	ContainerIngest     = "fleethealth-ingest"
	ContainerShipper    = "fleethealth-shipper"
	ContainerExporter   = "fleethealth-exporter"
	ContainerGrafana    = "fleethealth-grafana"
	ContainerPrometheus = "fleethealth-prometheus"
)

// defaultConfigDir is where rendered configs land on the target host.
const defaultConfigDir = "/var/lib/fleethealth"

// Options tune a deployment.
type Options struct {
	// Images overrides the container image set; zero value means defaults.
	Images Images

	// LogPaths are the log locations the shipper tails; empty means
	// DefaultLogPaths.
	LogPaths []string

	// ExporterConfig is the fleethealthd config uploaded for the exporter
	// container. Empty means the image's baked-in config.
	ExporterConfig []byte

	// ConfigDir is the directory on the target for rendered configs.
	ConfigDir string
}

func (o *Options) withDefaults() {
	if o.Images == (Images{}) {
		o.Images = DefaultImages()
	}
	if o.ConfigDir == "" {
		o.ConfigDir = defaultConfigDir
	}
}

// Deployment drives the diagnostic pod lifecycle on one target host.
type Deployment struct {
	runner target.Runner
	podman *podman
}

// New creates a Deployment operating through the given Runner.
func New(runner target.Runner) *Deployment {
	return &Deployment{
		runner: runner,
		podman: &podman{runner: runner},
	}
}

// Deploy provisions the pod: validates and pulls images, uploads configs,
// creates the pod, and starts all containers. Safe to re-run; existing
// pod and containers are replaced.
func (d *Deployment) Deploy(ctx context.Context, opts Options) error {
	opts.withDefaults()

	if err := opts.Images.Validate(); err != nil {
		return err
	}

	for role, image := range opts.Images.all() {
		if d.podman.imageExists(ctx, image) {
			continue
		}
		slog.Info("pulling image", "role", role, "image", image)
		if err := d.podman.pullImage(ctx, image); err != nil {
			return errors.WrapWithContext(errors.ErrCodeUnavailable,
				"failed to pull container image", err,
				map[string]any{"role": role, "image": image})
		}
	}

	shipperCfg, err := RenderShipperConfig(opts.LogPaths)
	if err != nil {
		return err
	}
	shipperCfgPath := path.Join(opts.ConfigDir, "promtail.yaml")
	if err := d.runner.Upload(ctx, shipperCfg, shipperCfgPath, 0o644); err != nil {
		return err
	}

	exporterCfgPath := ""
	if len(opts.ExporterConfig) > 0 {
		exporterCfgPath = path.Join(opts.ConfigDir, "exporter.yml")
		if err := d.runner.Upload(ctx, opts.ExporterConfig, exporterCfgPath, 0o644); err != nil {
			return err
		}
	}

	ports := []int{
		defaults.ExporterPort,
		defaults.IngestPort,
		defaults.ShipperPort,
		defaults.GrafanaPort,
		defaults.PrometheusPort,
	}
	if err := d.podman.createPod(ctx, PodName, ports); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create pod", err)
	}

	if err := d.runContainers(ctx, opts, shipperCfgPath, exporterCfgPath); err != nil {
		return err
	}

	waitSettle(ctx)
	slog.Info("diagnostic pod deployed", "host", d.runner.Host(), "pod", PodName)
	return nil
}

func (d *Deployment) runContainers(ctx context.Context, opts Options, shipperCfgPath, exporterCfgPath string) error {
	if err := d.podman.runContainer(ctx, PodName, ContainerIngest, opts.Images.Ingest); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to start ingest container", err)
	}

	err := d.podman.runContainer(ctx, PodName, ContainerShipper, opts.Images.Shipper,
		"-v", shipperCfgPath+":/etc/promtail/config.yml:ro",
		"-v", "/var/log:/var/log:ro",
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to start shipper container", err)
	}

	exporterArgs := []string{}
	if exporterCfgPath != "" {
		exporterArgs = append(exporterArgs,
			"-v", exporterCfgPath+":/etc/fleethealth/config.yml:ro")
	}
	if err := d.podman.runContainer(ctx, PodName, ContainerExporter,
		opts.Images.Exporter, exporterArgs...); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to start exporter container", err)
	}

	if err := d.podman.runContainer(ctx, PodName, ContainerGrafana, opts.Images.Grafana); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to start grafana container", err)
	}
	if err := d.podman.runContainer(ctx, PodName, ContainerPrometheus, opts.Images.Prometheus); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to start prometheus container", err)
	}
	return nil
}

// Start starts a previously deployed pod.
func (d *Deployment) Start(ctx context.Context) error {
	if !d.podman.podExists(ctx, PodName) {
		return errors.NewWithContext(errors.ErrCodeNotFound,
			"diagnostic pod does not exist, deploy it first",
			map[string]any{"pod": PodName, "host": d.runner.Host()})
	}
	if err := d.podman.startPod(ctx, PodName); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to start pod", err)
	}
	waitSettle(ctx)
	return nil
}

// Stop stops the pod, leaving it in place for a later Start.
func (d *Deployment) Stop(ctx context.Context) error {
	if !d.podman.podExists(ctx, PodName) {
		slog.Info("diagnostic pod does not exist, nothing to stop", "pod", PodName)
		return nil
	}
	if err := d.podman.stopPod(ctx, PodName); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to stop pod", err)
	}
	return nil
}

// Clean removes the pod, its containers, and the uploaded configs. opts
// must carry the same ConfigDir the pod was deployed with.
func (d *Deployment) Clean(ctx context.Context, opts Options) error {
	opts.withDefaults()

	if d.podman.podExists(ctx, PodName) {
		if err := d.podman.removePod(ctx, PodName); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to remove pod", err)
		}
	}
	if _, err := d.runner.Run(ctx, "rm", "-rf", opts.ConfigDir); err != nil {
		slog.Warn("failed to remove config directory", "error", err)
	}
	slog.Info("diagnostic pod cleaned", "host", d.runner.Host(), "pod", PodName)
	return nil
}

// TransferImage moves a locally built image to the remote target via
// podman save and load. Useful for exporter images not published to a
// registry.
func (d *Deployment) TransferImage(ctx context.Context, image string) error {
	if _, err := target.NewLocalRunner().Run(ctx, "podman", "image", "exists", image); err != nil {
		return errors.WrapWithContext(errors.ErrCodeNotFound,
			"image not found locally", err,
			map[string]any{"image": image})
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("fleethealth-image-%d.tar", os.Getpid()))
	defer os.Remove(tmpFile)

	local := &podman{runner: target.NewLocalRunner()}
	if err := local.saveImage(ctx, image, tmpFile); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to save image", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to read image archive", err)
	}

	remotePath := path.Join("/tmp", path.Base(tmpFile))
	if err := d.runner.Upload(ctx, data, remotePath, 0o600); err != nil {
		return err
	}
	defer func() {
		if _, err := d.runner.Run(ctx, "rm", "-f", remotePath); err != nil {
			slog.Warn("failed to remove remote image archive", "error", err)
		}
	}()

	if err := d.podman.loadImage(ctx, remotePath); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to load image on target", err)
	}

	slog.Info("image transferred", "image", image, "host", d.runner.Host())
	return nil
}
