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

// Package target abstracts the machine the diagnostic tooling operates on.
// A Runner executes commands and transfers files either on the local host
// or on a remote fleet server over SSH, so the deployment and service
// checks are written once against the same interface.
package target

import "context"

// Runner executes commands on a target machine.
type Runner interface {
	// Run executes a command and returns its combined output. A non-zero
	// exit status is returned as an error carrying the output.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// Upload writes data to path on the target with the given permissions.
	Upload(ctx context.Context, data []byte, path string, mode uint32) error

	// Host returns the name the target is addressed by. Local targets
	// report "localhost".
	Host() string

	// Close releases any connections the Runner holds.
	Close() error
}
