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

package readiness

// State is the outcome of one poll tick. It is recomputed every tick and
// never persisted.
type State struct {
	// ActiveTargets is the number of scrape targets the shipper reports.
	ActiveTargets int

	// ActiveFiles is the number of files the shipper is actively tailing.
	ActiveFiles int

	// StreamLags maps tailed filename to seconds-behind.
	StreamLags map[string]float64

	// IngestReady is true when the ingest pipeline's readiness endpoint
	// reported the ready token.
	IngestReady bool

	// ShipperReady mirrors the shipper's own readiness endpoint. It is
	// reported in timeout diagnostics but does not gate convergence; the
	// shipper's metrics are the authoritative backlog signal.
	ShipperReady bool

	// MetricsSeen is true once the shipper metrics endpoint has responded
	// at least once. Without it the predicate can never hold and the wait
	// resolves only through the timeout.
	MetricsSeen bool
}

// Criteria are the convergence thresholds a State is evaluated against.
type Criteria struct {
	// TargetCount is the expected number of scrape targets for the
	// deployment topology.
	TargetCount int

	// LagThreshold is the per-file seconds-behind value at or above which
	// the pipeline is not caught up.
	LagThreshold float64
}

// TargetsMet reports whether the shipper scrapes at least the expected
// number of targets.
func (s *State) TargetsMet(c Criteria) bool {
	return s.MetricsSeen && s.ActiveTargets >= c.TargetCount
}

// LagObservedOrIdle reports whether lag data exists, or no files are being
// tailed at all. This avoids waiting forever for files with nothing to tail.
func (s *State) LagObservedOrIdle() bool {
	return len(s.StreamLags) > 0 || (s.MetricsSeen && s.ActiveFiles == 0)
}

// LagBelowThreshold reports whether every observed stream lag is under the
// threshold.
func (s *State) LagBelowThreshold(c Criteria) bool {
	for _, lag := range s.StreamLags {
		if lag >= c.LagThreshold {
			return false
		}
	}
	return true
}

// BacklogDrained reports whether it is NOT the case that lag entries exist
// while files are still actively tailed. Once lag data appears, the backlog
// must fully drain before the pipeline counts as ready.
func (s *State) BacklogDrained() bool {
	return !(len(s.StreamLags) > 0 && s.ActiveFiles != 0)
}

// Converged is the overall convergence predicate: every sub-condition must
// hold for the pipeline to be considered consistent and query-able.
func (s *State) Converged(c Criteria) bool {
	return s.TargetsMet(c) &&
		s.LagObservedOrIdle() &&
		s.LagBelowThreshold(c) &&
		s.BacklogDrained() &&
		s.IngestReady
}

// Pending names the sub-conditions that do not hold, for timeout
// diagnostics.
func (s *State) Pending(c Criteria) []string {
	var pending []string
	if !s.TargetsMet(c) {
		pending = append(pending, "target-count-met")
	}
	if !s.LagObservedOrIdle() {
		pending = append(pending, "lag-observed-or-idle")
	}
	if !s.LagBelowThreshold(c) {
		pending = append(pending, "lag-below-threshold")
	}
	if !s.BacklogDrained() {
		pending = append(pending, "backlog-drained")
	}
	if !s.IngestReady {
		pending = append(pending, "ingest-ready")
	}
	return pending
}
