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

package deploy

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleethealth/pkg/errors"
)

// fakeRunner records commands and uploads, answering "exists" probes from
// a configurable set.
type fakeRunner struct {
	commands []string
	uploads  map[string][]byte
	exists   map[string]bool // "pod/<name>", "image/<ref>"
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		uploads: map[string][]byte{},
		exists:  map[string]bool{},
	}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmd := name + " " + strings.Join(args, " ")
	f.commands = append(f.commands, cmd)

	if name == "podman" && len(args) >= 3 && args[1] == "exists" {
		if f.exists[args[0]+"/"+args[2]] {
			return "", nil
		}
		return "", fmt.Errorf("%s %s does not exist", args[0], args[2])
	}
	return "", nil
}

func (f *fakeRunner) Upload(_ context.Context, data []byte, path string, _ uint32) error {
	f.uploads[path] = data
	return nil
}

func (f *fakeRunner) Host() string { return "fleet-01" }
func (f *fakeRunner) Close() error { return nil }

func (f *fakeRunner) ran(fragment string) bool {
	for _, cmd := range f.commands {
		if strings.Contains(cmd, fragment) {
			return true
		}
	}
	return false
}

func TestDeploy(t *testing.T) {
	runner := newFakeRunner()
	// ingest image already present, the rest get pulled
	runner.exists["image/"+DefaultImages().Ingest] = true

	err := New(runner).Deploy(context.Background(), Options{})
	require.NoError(t, err)

	assert.False(t, runner.ran("pull "+DefaultImages().Ingest))
	assert.True(t, runner.ran("pull "+DefaultImages().Shipper))

	assert.True(t, runner.ran("pod create --name fleethealth"))
	assert.True(t, runner.ran("-p 9000:9000"))
	assert.True(t, runner.ran("-p 3100:3100"))
	assert.True(t, runner.ran("-p 9081:9081"))

	for _, c := range []string{
		ContainerIngest, ContainerShipper, ContainerExporter,
		ContainerGrafana, ContainerPrometheus,
	} {
		assert.True(t, runner.ran("--name "+c), c)
	}

	cfg, ok := runner.uploads["/var/lib/fleethealth/promtail.yaml"]
	require.True(t, ok)
	assert.Contains(t, string(cfg), "http_listen_port: 9081")
}

func TestDeployUploadsExporterConfig(t *testing.T) {
	runner := newFakeRunner()

	err := New(runner).Deploy(context.Background(), Options{
		ExporterConfig: []byte("db_host: localhost\n"),
	})
	require.NoError(t, err)

	cfg, ok := runner.uploads["/var/lib/fleethealth/exporter.yml"]
	require.True(t, ok)
	assert.Contains(t, string(cfg), "db_host")
	assert.True(t, runner.ran("/etc/fleethealth/config.yml:ro"))
}

func TestDeployInvalidImage(t *testing.T) {
	runner := newFakeRunner()
	images := DefaultImages()
	images.Exporter = "NOT a valid ref!"

	err := New(runner).Deploy(context.Background(), Options{Images: images})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
	assert.Empty(t, runner.commands, "nothing runs when validation fails")
}

func TestStartMissingPod(t *testing.T) {
	runner := newFakeRunner()

	err := New(runner).Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestStartExistingPod(t *testing.T) {
	runner := newFakeRunner()
	runner.exists["pod/"+PodName] = true

	err := New(runner).Start(context.Background())
	require.NoError(t, err)
	assert.True(t, runner.ran("pod start fleethealth"))
}

func TestStopMissingPodIsNoop(t *testing.T) {
	runner := newFakeRunner()

	err := New(runner).Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, runner.ran("pod stop"))
}

func TestClean(t *testing.T) {
	runner := newFakeRunner()
	runner.exists["pod/"+PodName] = true

	err := New(runner).Clean(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, runner.ran("pod rm -f fleethealth"))
	assert.True(t, runner.ran("rm -rf /var/lib/fleethealth"))
}

func TestCleanCustomConfigDir(t *testing.T) {
	runner := newFakeRunner()
	runner.exists["pod/"+PodName] = true

	err := New(runner).Clean(context.Background(), Options{ConfigDir: "/opt/fleethealth"})
	require.NoError(t, err)
	assert.True(t, runner.ran("rm -rf /opt/fleethealth"))
	assert.False(t, runner.ran("rm -rf /var/lib/fleethealth"))
}

func TestImagesValidate(t *testing.T) {
	require.NoError(t, DefaultImages().Validate())

	images := DefaultImages()
	images.Grafana = ""
	err := images.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestRenderShipperConfig(t *testing.T) {
	cfg, err := RenderShipperConfig(nil)
	require.NoError(t, err)

	out := string(cfg)
	assert.Contains(t, out, "http_listen_port: 9081")
	assert.Contains(t, out, "url: http://localhost:3100/loki/api/v1/push")
	// the shipper rejects duplicate job names, so all paths share one
	// scrape config with a static config per path
	assert.Equal(t, 1, strings.Count(out, "job_name:"))
	assert.Equal(t, len(DefaultLogPaths), strings.Count(out, "- targets:"))
	for _, p := range DefaultLogPaths {
		assert.Contains(t, out, "__path__: "+p)
	}
}

func TestRenderShipperConfigCustomPaths(t *testing.T) {
	cfg, err := RenderShipperConfig([]string{"/var/log/custom/*.log"})
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "__path__: /var/log/custom/*.log")
	assert.Equal(t, 1, strings.Count(string(cfg), "job_name: fleet"))
}
