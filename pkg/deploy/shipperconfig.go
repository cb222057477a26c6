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
	"bytes"
	"text/template"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
)

// DefaultLogPaths are the fleet server log locations the shipper tails.
// Their count matches defaults.ShipperTargets; keep the two in sync when
// adding paths.
var DefaultLogPaths = []string{
	"/var/log/salt/master",
	"/var/log/salt/api",
	"/var/log/apache2/*.log",
	"/var/log/postgresql/*.log",
	"/var/log/fleet/taskomatic/*.log",
	"/var/log/fleet/web/*.log",
}

// shipperConfigTemplate renders the shipper (promtail) configuration.
// job_name must be unique, so a single scrape config carries one static
// config per tailed path; each path still counts as its own target in the
// shipper's metrics.
const shipperConfigTemplate = `server:
  http_listen_port: {{ .ShipperPort }}
  grpc_listen_port: 0

positions:
  filename: /tmp/positions.yaml

clients:
  - url: http://localhost:{{ .IngestPort }}/loki/api/v1/push

scrape_configs:
  - job_name: fleet
    static_configs:
{{- range .Paths }}
      - targets:
          - localhost
        labels:
          job: fleet
          __path__: {{ . }}
{{- end }}
`

type shipperConfigData struct {
	ShipperPort int
	IngestPort  int
	Paths       []string
}

// RenderShipperConfig produces the shipper configuration for the given
// log paths. Empty paths fall back to DefaultLogPaths.
func RenderShipperConfig(paths []string) ([]byte, error) {
	if len(paths) == 0 {
		paths = DefaultLogPaths
	}

	tmpl, err := template.New("shipper").Parse(shipperConfigTemplate)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal,
			"failed to parse shipper config template", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, shipperConfigData{
		ShipperPort: defaults.ShipperPort,
		IngestPort:  defaults.IngestPort,
		Paths:       paths,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal,
			"failed to render shipper config", err)
	}
	return buf.Bytes(), nil
}
