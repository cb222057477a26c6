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

package checker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/target"
)

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	opts.withDefaults()

	assert.Equal(t, "localhost", opts.Server)
	assert.Equal(t, defaults.ExporterPort, opts.ExporterPort)
	assert.Equal(t, defaults.ShipperTargets, opts.TargetCount)
	assert.Equal(t, defaults.ReadinessTimeout, opts.Timeout)
	assert.Equal(t, time.Duration(defaults.LogStatsSinceDays)*24*time.Hour, opts.Since)
}

func TestOptionsDefaultsPreserveExplicit(t *testing.T) {
	opts := Options{
		Server:      "fleet-01",
		TargetCount: 3,
		Timeout:     time.Minute,
	}
	opts.withDefaults()

	assert.Equal(t, "fleet-01", opts.Server)
	assert.Equal(t, 3, opts.TargetCount)
	assert.Equal(t, time.Minute, opts.Timeout)
}

func TestOptionsLocal(t *testing.T) {
	for server, want := range map[string]bool{
		"":          true, // normalized to localhost
		"localhost": true,
		"127.0.0.1": true,
		"fleet-01":  false,
	} {
		opts := Options{Server: server}
		opts.withDefaults()
		assert.Equal(t, want, opts.local(), server)
	}
}

func TestLocalRunner(t *testing.T) {
	c := New(Options{Server: "localhost"})
	runner, err := c.runner()
	assert.NoError(t, err)
	defer runner.Close()

	_, ok := runner.(*target.LocalRunner)
	assert.True(t, ok)
}
