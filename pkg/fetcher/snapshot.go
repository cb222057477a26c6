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

package fetcher

// Metric families the exporter is required to publish. A scrape that is
// missing any of them is treated as not ready, never as a partial result.
const (
	// FamilyJobs carries one gauge per scheduler job bucket,
	// labeled with the function tag and the metric name.
	FamilyJobs = "scheduler_jobs"

	// FamilyMasterStats carries master-level named stats.
	FamilyMasterStats = "master_stats"

	// FamilySummary carries the fleet server's domain counters.
	FamilySummary = "fleet_summary"
)

// Snapshot is the aggregated result of one fetch cycle. A snapshot is
// either fully populated or entirely empty: emptiness signals that the
// exporter has not computed its data yet, not an error.
type Snapshot struct {
	// Jobs maps summary bucket name to job count.
	Jobs map[string]float64 `json:"jobs" yaml:"jobs"`

	// MasterStats maps stat name to value.
	MasterStats map[string]float64 `json:"masterStats" yaml:"masterStats"`

	// Summary maps domain-counter name to value.
	Summary map[string]float64 `json:"summary" yaml:"summary"`
}

// Empty reports whether the snapshot carries no data. Callers must treat an
// empty snapshot as "try again", never as "zero".
func (s *Snapshot) Empty() bool {
	return len(s.Jobs) == 0 && len(s.MasterStats) == 0 && len(s.Summary) == 0
}
