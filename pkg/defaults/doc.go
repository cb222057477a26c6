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

// Package defaults provides centralized configuration constants for fleethealth.
//
// This package defines ports, timeout values, retry parameters, and
// convergence thresholds used across the codebase. Centralizing these values
// ensures consistency between the CLI, the readiness monitor, the metrics
// fetcher, and the exporter daemon, and makes tuning easier.
//
// # Categories
//
// Constants are organized by component:
//
//   - Pod ports: Host ports published by the diagnostic pod
//   - Readiness parameters: Convergence thresholds and poll cadence
//   - Fetch parameters: Retry bounds for the exporter scrape
//   - Server timeouts: For the exporter HTTP server
//   - Transport timeouts: For SSH and podman invocations
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/fleetops/fleethealth/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ReadinessTimeout)
//	defer cancel()
//
// Most constants are defaults only: the corresponding CLI flags and the
// exporter configuration file can override them at runtime.
package defaults
