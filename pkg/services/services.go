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

// Package services checks the health of the fleet server's systemd units.
// Local checks talk to systemd over D-Bus; remote checks go through
// systemctl on a target Runner.
package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/fleetops/fleethealth/pkg/errors"
	"github.com/fleetops/fleethealth/pkg/target"
)

// FleetUnits are the systemd units a fleet server is expected to run.
var FleetUnits = []string{
	"salt-master.service",
	"postgresql.service",
	"apache2.service",
	"taskomatic.service",
}

// Status is the health of one systemd unit.
type Status struct {
	// Unit is the systemd unit name.
	Unit string `json:"unit" yaml:"unit"`

	// ActiveState is systemd's active state, e.g. "active" or "failed".
	ActiveState string `json:"activeState" yaml:"activeState"`

	// SubState is systemd's sub state, e.g. "running" or "dead".
	SubState string `json:"subState" yaml:"subState"`

	// Healthy is true when the unit is active.
	Healthy bool `json:"healthy" yaml:"healthy"`
}

// Checker reports the status of a set of systemd units.
type Checker struct {
	// Units are the units to check; FleetUnits when empty.
	Units []string
}

func (c *Checker) units() []string {
	if len(c.Units) == 0 {
		return FleetUnits
	}
	return c.Units
}

// CheckLocal queries systemd over D-Bus on the local host. Units that
// systemd does not know are reported with ActiveState "unknown".
func (c *Checker) CheckLocal(ctx context.Context) ([]Status, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable,
			"failed to connect to systemd", err)
	}
	defer conn.Close()

	statuses := make([]Status, 0, len(c.units()))
	for _, unit := range c.units() {
		props, err := conn.GetUnitPropertiesContext(ctx, unit)
		if err != nil {
			slog.Warn("failed to query unit, reporting as unknown",
				"unit", unit, "error", err)
			statuses = append(statuses, unknownStatus(unit))
			continue
		}
		statuses = append(statuses, statusFromProps(unit, props))
	}

	sortStatuses(statuses)
	return statuses, nil
}

// CheckRemote queries unit states through systemctl on the given target.
func (c *Checker) CheckRemote(ctx context.Context, runner target.Runner) ([]Status, error) {
	statuses := make([]Status, 0, len(c.units()))

	for _, unit := range c.units() {
		out, err := runner.Run(ctx,
			"systemctl", "show", unit, "--property=ActiveState,SubState")
		if err != nil {
			slog.Warn("failed to query remote unit, reporting as unknown",
				"unit", unit, "host", runner.Host(), "error", err)
			statuses = append(statuses, unknownStatus(unit))
			continue
		}
		statuses = append(statuses, statusFromShow(unit, out))
	}

	sortStatuses(statuses)
	return statuses, nil
}

// Unhealthy filters statuses down to the units that are not active.
func Unhealthy(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Healthy {
			out = append(out, s)
		}
	}
	return out
}

func unknownStatus(unit string) Status {
	return Status{
		Unit:        unit,
		ActiveState: "unknown",
		SubState:    "unknown",
	}
}

func statusFromProps(unit string, props map[string]any) Status {
	s := Status{Unit: unit}
	if v, ok := props["ActiveState"].(string); ok {
		s.ActiveState = v
	}
	if v, ok := props["SubState"].(string); ok {
		s.SubState = v
	}
	s.Healthy = s.ActiveState == "active"
	return s
}

// statusFromShow parses `systemctl show` key=value output.
func statusFromShow(unit, out string) Status {
	s := Status{Unit: unit}
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		switch key {
		case "ActiveState":
			s.ActiveState = value
		case "SubState":
			s.SubState = value
		}
	}
	s.Healthy = s.ActiveState == "active"
	return s
}

func sortStatuses(statuses []Status) {
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Unit < statuses[j].Unit
	})
}
