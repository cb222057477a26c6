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

package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner satisfies target.Runner with canned systemctl output.
type fakeRunner struct {
	states map[string]string // unit -> "ActiveState\nSubState"
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	if name != "systemctl" {
		return "", fmt.Errorf("unexpected command: %s", name)
	}
	unit := args[1]
	state, ok := f.states[unit]
	if !ok {
		return "", fmt.Errorf("unit %s not found", unit)
	}
	parts := strings.SplitN(state, " ", 2)
	return fmt.Sprintf("ActiveState=%s\nSubState=%s", parts[0], parts[1]), nil
}

func (f *fakeRunner) Upload(context.Context, []byte, string, uint32) error { return nil }
func (f *fakeRunner) Host() string                                         { return "fleet-01" }
func (f *fakeRunner) Close() error                                         { return nil }

func TestCheckRemote(t *testing.T) {
	runner := &fakeRunner{states: map[string]string{
		"salt-master.service": "active running",
		"postgresql.service":  "active running",
		"apache2.service":     "failed dead",
		"taskomatic.service":  "inactive dead",
	}}

	statuses, err := (&Checker{}).CheckRemote(context.Background(), runner)
	require.NoError(t, err)
	require.Len(t, statuses, 4)

	// sorted by unit name
	assert.Equal(t, "apache2.service", statuses[0].Unit)
	assert.False(t, statuses[0].Healthy)
	assert.Equal(t, "failed", statuses[0].ActiveState)

	assert.Equal(t, "salt-master.service", statuses[2].Unit)
	assert.True(t, statuses[2].Healthy)
	assert.Equal(t, "running", statuses[2].SubState)
}

func TestCheckRemoteUnknownUnit(t *testing.T) {
	runner := &fakeRunner{states: map[string]string{}}

	statuses, err := (&Checker{Units: []string{"ghost.service"}}).
		CheckRemote(context.Background(), runner)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "unknown", statuses[0].ActiveState)
	assert.False(t, statuses[0].Healthy)
}

func TestStatusFromShow(t *testing.T) {
	s := statusFromShow("salt-master.service", "ActiveState=active\nSubState=running\n")
	assert.True(t, s.Healthy)
	assert.Equal(t, "active", s.ActiveState)
	assert.Equal(t, "running", s.SubState)

	s = statusFromShow("x.service", "garbage")
	assert.False(t, s.Healthy)
}

func TestStatusFromProps(t *testing.T) {
	s := statusFromProps("postgresql.service", map[string]any{
		"ActiveState": "active",
		"SubState":    "running",
	})
	assert.True(t, s.Healthy)

	s = statusFromProps("postgresql.service", map[string]any{
		"ActiveState": 42, // wrong type is tolerated
	})
	assert.False(t, s.Healthy)
}

func TestUnhealthy(t *testing.T) {
	statuses := []Status{
		{Unit: "a.service", Healthy: true},
		{Unit: "b.service", Healthy: false},
	}
	bad := Unhealthy(statuses)
	require.Len(t, bad, 1)
	assert.Equal(t, "b.service", bad[0].Unit)

	assert.Nil(t, Unhealthy(statuses[:1]))
}
