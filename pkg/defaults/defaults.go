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

package defaults

import "time"

// Well-known ports of the diagnostic pod. The pod publishes all of them on
// the host so the CLI can reach the containers from outside.
const (
	// ExporterPort is the port the fleethealthd metrics exporter listens on.
	ExporterPort = 9000

	// IngestPort is the port of the log ingest pipeline (loki).
	IngestPort = 3100

	// ShipperPort is the metrics/readiness port of the log shipper (promtail).
	ShipperPort = 9081

	// GrafanaPort is the port of the dashboard container.
	GrafanaPort = 3000

	// PrometheusPort is the port of the prometheus container.
	PrometheusPort = 9090
)

// Readiness convergence parameters.
const (
	// ShipperTargets is the number of scrape targets the shipper config
	// declares. Update this when adding targets to the shipper config
	// template.
	ShipperTargets = 6

	// ReadinessTimeout bounds the wait for the log pipeline to become
	// query-able.
	ReadinessTimeout = 120 * time.Second

	// ReadinessInterval is the cadence of the readiness poll loop.
	ReadinessInterval = 1 * time.Second

	// StreamLagThreshold is the per-file lag (seconds behind) above which
	// the pipeline is not considered caught up.
	StreamLagThreshold = 10.0
)

// Metrics fetch parameters.
const (
	// FetchRetries is the number of attempts against the exporter endpoint
	// before the fetch is escalated as fatal.
	FetchRetries = 5

	// FetchRetryInterval is the fixed sleep between fetch attempts.
	FetchRetryInterval = 1 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 10 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second
)

// Exporter server timeouts.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second

	// ExporterRefreshInterval is the period between data gathering cycles
	// in the exporter daemon.
	ExporterRefreshInterval = 60 * time.Second
)

// Deployment and transport timeouts.
const (
	// SSHDialTimeout is the timeout for establishing SSH connections.
	SSHDialTimeout = 10 * time.Second

	// PodmanCommandTimeout bounds individual podman invocations.
	PodmanCommandTimeout = 2 * time.Minute

	// ImageTransferTimeout bounds a podman save/load round trip including
	// the SFTP copy.
	ImageTransferTimeout = 10 * time.Minute
)

// Report parameters.
const (
	// LogStatsSinceDays is the default window for the error-log statistics.
	LogStatsSinceDays = 7

	// LogStatsLimit caps the number of per-file error counters requested
	// from the ingest pipeline.
	LogStatsLimit = 150
)
