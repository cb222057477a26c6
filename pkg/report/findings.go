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

package report

import (
	"fmt"

	"github.com/fleetops/fleethealth/pkg/fetcher"
	"github.com/fleetops/fleethealth/pkg/logquery"
	"github.com/fleetops/fleethealth/pkg/services"
)

// Severity grades a Finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is a condition derived from the collected data. Findings travel
// with the report instead of being accumulated in shared state, so
// concurrent runs never mix their diagnostics.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

// Summary counter names emitted by the exporter.
const (
	summaryFailedActions = "actions_failed_last_24h"
	summarySystems       = "systems"
)

func deriveFindings(snap *fetcher.Snapshot, statuses []services.Status, logStats *logquery.Stats) []Finding {
	findings := []Finding{}

	for _, s := range services.Unhealthy(statuses) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message: fmt.Sprintf("service %s is not running (%s/%s)",
				s.Unit, s.ActiveState, s.SubState),
		})
	}

	if snap.Empty() {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message:  "the metrics exporter returned no data, the fleet server may be unhealthy",
		})
		return findings
	}

	if len(snap.Jobs) == 0 {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Message:  "no scheduler jobs recorded, the job scheduler may be idle",
		})
	}

	if failed, ok := snap.Summary[summaryFailedActions]; ok && failed > 0 {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d actions failed in the last 24 hours", int(failed)),
		})
	}

	if systems, ok := snap.Summary[summarySystems]; ok && systems == 0 {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message:  "no systems registered with the fleet server",
		})
	}

	if logStats != nil && logStats.TotalErrors > 0 {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("%d error log lines in the last %s",
				logStats.TotalErrors, logStats.Window),
		})
	}

	return findings
}
