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
	"github.com/distribution/reference"

	"github.com/fleetops/fleethealth/pkg/errors"
)

// Images are the container images of the diagnostic pod.
type Images struct {
	// Ingest is the log ingest pipeline image (loki).
	Ingest string `json:"ingest" yaml:"ingest"`

	// Shipper is the log shipper image (promtail).
	Shipper string `json:"shipper" yaml:"shipper"`

	// Exporter is the fleethealthd metrics exporter image.
	Exporter string `json:"exporter" yaml:"exporter"`

	// Grafana is the dashboard image.
	Grafana string `json:"grafana" yaml:"grafana"`

	// Prometheus is the metrics store image.
	Prometheus string `json:"prometheus" yaml:"prometheus"`
}

// DefaultImages returns the image set the pod runs unless overridden.
func DefaultImages() Images {
	return Images{
		Ingest:     "docker.io/grafana/loki:2.9.8",
		Shipper:    "docker.io/grafana/promtail:2.9.8",
		Exporter:   "ghcr.io/fleetops/fleethealthd:latest",
		Grafana:    "docker.io/grafana/grafana:10.4.2",
		Prometheus: "docker.io/prom/prometheus:v2.51.2",
	}
}

// all returns the images keyed by role, for iteration.
func (i Images) all() map[string]string {
	return map[string]string{
		"ingest":     i.Ingest,
		"shipper":    i.Shipper,
		"exporter":   i.Exporter,
		"grafana":    i.Grafana,
		"prometheus": i.Prometheus,
	}
}

// Validate checks that every image is a well-formed container image
// reference.
func (i Images) Validate() error {
	for role, image := range i.all() {
		if image == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"container image is empty",
				map[string]any{"role": role})
		}
		if _, err := reference.ParseNormalizedNamed(image); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"invalid container image reference", err,
				map[string]any{"role": role, "image": image})
		}
	}
	return nil
}
