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
	"time"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/target"
)

// podman wraps the podman invocations the deployment needs. All calls go
// through a target.Runner so the same code drives local and remote hosts.
type podman struct {
	runner target.Runner
}

func (p *podman) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.PodmanCommandTimeout)
	defer cancel()
	return p.runner.Run(ctx, "podman", args...)
}

// podExists reports whether a pod with the given name exists.
// `podman pod exists` signals absence through its exit status.
func (p *podman) podExists(ctx context.Context, name string) bool {
	_, err := p.run(ctx, "pod", "exists", name)
	return err == nil
}

func (p *podman) imageExists(ctx context.Context, image string) bool {
	_, err := p.run(ctx, "image", "exists", image)
	return err == nil
}

// createPod creates the pod and publishes the given container ports on
// the host.
func (p *podman) createPod(ctx context.Context, name string, ports []int) error {
	args := []string{"pod", "create", "--name", name, "--replace"}
	for _, port := range ports {
		args = append(args, "-p", fmt.Sprintf("%d:%d", port, port))
	}
	_, err := p.run(ctx, args...)
	return err
}

// runContainer starts a detached container inside the pod.
func (p *podman) runContainer(ctx context.Context, pod, name, image string, extra ...string) error {
	args := []string{"run", "-d", "--pod", pod, "--name", name, "--replace"}
	args = append(args, extra...)
	args = append(args, image)
	_, err := p.run(ctx, args...)
	return err
}

func (p *podman) startPod(ctx context.Context, name string) error {
	_, err := p.run(ctx, "pod", "start", name)
	return err
}

func (p *podman) stopPod(ctx context.Context, name string) error {
	_, err := p.run(ctx, "pod", "stop", "-t", "10", name)
	return err
}

// removePod force-removes the pod and its containers.
func (p *podman) removePod(ctx context.Context, name string) error {
	_, err := p.run(ctx, "pod", "rm", "-f", name)
	return err
}

func (p *podman) pullImage(ctx context.Context, image string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ImageTransferTimeout)
	defer cancel()
	_, err := p.runner.Run(ctx, "podman", "pull", image)
	return err
}

func (p *podman) loadImage(ctx context.Context, tarPath string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ImageTransferTimeout)
	defer cancel()
	_, err := p.runner.Run(ctx, "podman", "load", "-i", tarPath)
	return err
}

func (p *podman) saveImage(ctx context.Context, image, tarPath string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ImageTransferTimeout)
	defer cancel()
	_, err := p.runner.Run(ctx, "podman", "save", "-o", tarPath, image)
	return err
}

// waitSettle gives freshly started containers a moment before anything
// polls their endpoints.
func waitSettle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}
