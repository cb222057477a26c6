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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCriteria() Criteria {
	return Criteria{TargetCount: 6, LagThreshold: 10.0}
}

func TestTargetsMet(t *testing.T) {
	c := testCriteria()

	s := &State{MetricsSeen: true, ActiveTargets: 5}
	assert.False(t, s.TargetsMet(c))

	// a subsequent tick raises the count to the expected number
	s = &State{MetricsSeen: true, ActiveTargets: 6}
	assert.True(t, s.TargetsMet(c))

	s = &State{MetricsSeen: true, ActiveTargets: 7}
	assert.True(t, s.TargetsMet(c))

	// without any metrics response the count is meaningless
	s = &State{MetricsSeen: false, ActiveTargets: 6}
	assert.False(t, s.TargetsMet(c))
}

func TestLagObservedOrIdle(t *testing.T) {
	s := &State{MetricsSeen: true, ActiveFiles: 3}
	assert.False(t, s.LagObservedOrIdle(), "files tailed but no lag data yet")

	s = &State{
		MetricsSeen: true,
		ActiveFiles: 3,
		StreamLags:  map[string]float64{"/var/log/app.log": 0.5},
	}
	assert.True(t, s.LagObservedOrIdle())

	s = &State{MetricsSeen: true, ActiveFiles: 0}
	assert.True(t, s.LagObservedOrIdle(), "nothing to tail counts as idle")

	s = &State{MetricsSeen: false, ActiveFiles: 0}
	assert.False(t, s.LagObservedOrIdle(), "zero files without metrics is not idle")
}

func TestLagBelowThreshold(t *testing.T) {
	c := testCriteria()

	s := &State{StreamLags: map[string]float64{
		"/var/log/a.log": 1.2,
		"/var/log/b.log": 9.9,
	}}
	assert.True(t, s.LagBelowThreshold(c))

	// a single file twelve seconds behind withholds readiness
	s = &State{StreamLags: map[string]float64{
		"/var/log/a.log": 1.2,
		"/var/log/b.log": 12.0,
	}}
	assert.False(t, s.LagBelowThreshold(c))

	// the threshold itself is too far behind
	s = &State{StreamLags: map[string]float64{"/var/log/a.log": 10.0}}
	assert.False(t, s.LagBelowThreshold(c))

	s = &State{}
	assert.True(t, s.LagBelowThreshold(c), "no lag entries, nothing over threshold")
}

func TestBacklogDrained(t *testing.T) {
	s := &State{
		ActiveFiles: 2,
		StreamLags:  map[string]float64{"/var/log/a.log": 0.1},
	}
	assert.False(t, s.BacklogDrained())

	s = &State{ActiveFiles: 0, StreamLags: map[string]float64{}}
	assert.True(t, s.BacklogDrained())

	s = &State{ActiveFiles: 2}
	assert.True(t, s.BacklogDrained(), "no lag entries yet")
}

func TestConverged(t *testing.T) {
	c := testCriteria()

	converged := &State{
		MetricsSeen:   true,
		ActiveTargets: 6,
		ActiveFiles:   0,
		StreamLags:    map[string]float64{},
		IngestReady:   true,
	}
	assert.True(t, converged.Converged(c))
	assert.Empty(t, converged.Pending(c))

	tests := []struct {
		name    string
		mutate  func(s *State)
		pending string
	}{
		{
			name:    "targets below expected count",
			mutate:  func(s *State) { s.ActiveTargets = 4 },
			pending: "target-count-met",
		},
		{
			name:    "ingest not ready",
			mutate:  func(s *State) { s.IngestReady = false },
			pending: "ingest-ready",
		},
		{
			name: "lag over threshold",
			mutate: func(s *State) {
				s.StreamLags = map[string]float64{"/var/log/a.log": 12.0}
			},
			pending: "lag-below-threshold",
		},
		{
			name: "backlog not drained",
			mutate: func(s *State) {
				s.ActiveFiles = 2
				s.StreamLags = map[string]float64{"/var/log/a.log": 0.2}
			},
			pending: "backlog-drained",
		},
		{
			name:    "files tailed without lag data",
			mutate:  func(s *State) { s.ActiveFiles = 2 },
			pending: "lag-observed-or-idle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &State{
				MetricsSeen:   true,
				ActiveTargets: 6,
				ActiveFiles:   0,
				StreamLags:    map[string]float64{},
				IngestReady:   true,
			}
			tt.mutate(s)
			assert.False(t, s.Converged(c))
			assert.Contains(t, s.Pending(c), tt.pending)
		})
	}
}

func TestParseShipperPayload(t *testing.T) {
	payload := `# HELP promtail_targets_active_total Number of active targets.
# TYPE promtail_targets_active_total gauge
promtail_targets_active_total 6
promtail_files_active_total 2
promtail_stream_lag_seconds{client="http://ingest:3100",filename="/var/log/app.log",host="srv"} 1.5
promtail_stream_lag_seconds{client="http://ingest:3100",filename="/var/log/err.log",host="srv"} 12
promtail_stream_lag_seconds{client="http://ingest:3100",host="srv"} 3.0
some_other_metric 42
garbage line here
`

	stats := parseShipperPayload(payload)
	assert.Equal(t, 6, stats.activeTargets)
	assert.Equal(t, 2, stats.activeFiles)
	assert.Len(t, stats.streamLags, 2, "lag lines without a filename label are skipped")
	assert.InDelta(t, 1.5, stats.streamLags["/var/log/app.log"], 0.001)
	assert.InDelta(t, 12.0, stats.streamLags["/var/log/err.log"], 0.001)
}
