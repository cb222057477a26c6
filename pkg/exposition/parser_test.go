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

package exposition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `# HELP scheduler_jobs Scheduler jobs in the last 24 hours
# TYPE scheduler_jobs gauge
scheduler_jobs{fun="state.apply",name="scheduler_jobs_state.apply_total"} 4
scheduler_jobs{fun="test.ping",name="scheduler_jobs_test.ping_total"} 12
master_stats{name="salt_master_pub_hwm"} 1000
fleet_summary{name="systems_total"} 42
fleet_summary{name="channels_total"} 7
`

func TestParse(t *testing.T) {
	got := Parse(samplePayload,
		Pattern{Name: "scheduler_jobs", Labels: []string{"fun", "name"}},
		Pattern{Name: "master_stats", Labels: []string{"name"}},
		Pattern{Name: "fleet_summary", Labels: []string{"name"}},
	)

	require.Len(t, got["scheduler_jobs"], 2)
	require.Len(t, got["master_stats"], 1)
	require.Len(t, got["fleet_summary"], 2)

	jobs := got["scheduler_jobs"]
	assert.Equal(t, "state.apply", jobs[0].Label("fun"))
	assert.Equal(t, 4.0, jobs[0].Value)
	assert.Equal(t, "test.ping", jobs[1].Label("fun"))

	// payload order is preserved
	summary := got["fleet_summary"]
	assert.Equal(t, "systems_total", summary[0].Label("name"))
	assert.Equal(t, "channels_total", summary[1].Label("name"))
}

func TestParseDeterministic(t *testing.T) {
	patterns := []Pattern{
		{Name: "scheduler_jobs", Labels: []string{"fun", "name"}},
		{Name: "fleet_summary", Labels: []string{"name"}},
	}

	first := Parse(samplePayload, patterns...)
	second := Parse(samplePayload, patterns...)
	assert.Equal(t, first, second)
}

func TestParseEmptyPayload(t *testing.T) {
	got := Parse("", Pattern{Name: "fleet_summary", Labels: []string{"name"}})

	// empty payload is not an error: every pattern yields an empty list
	require.NotNil(t, got["fleet_summary"])
	assert.Empty(t, got["fleet_summary"])
}

func TestParseSkipsMalformedLines(t *testing.T) {
	payload := `fleet_summary{name="good"} 1
fleet_summary{name="bad-value"} not-a-number
fleet_summary{name="unterminated 3
fleet_summary{wrong="label"} 4
fleet_summary 5
fleet_summary{name="also-good"} 2
`
	got := Parse(payload, Pattern{Name: "fleet_summary", Labels: []string{"name"}})

	require.Len(t, got["fleet_summary"], 2)
	assert.Equal(t, "good", got["fleet_summary"][0].Label("name"))
	assert.Equal(t, "also-good", got["fleet_summary"][1].Label("name"))
}

func TestParseIgnoresExtraLabels(t *testing.T) {
	payload := `scheduler_jobs{fun="test.ping",name="x",instance="localhost:9000"} 1`
	got := Parse(payload, Pattern{Name: "scheduler_jobs", Labels: []string{"fun", "name"}})

	require.Len(t, got["scheduler_jobs"], 1)
	assert.Equal(t, "localhost:9000", got["scheduler_jobs"][0].Label("instance"))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantOK  bool
	}{
		{
			name:   "bare metric",
			line:   "promtail_targets_active_total 6",
			want:   Record{Name: "promtail_targets_active_total", Labels: map[string]string{}, Value: 6},
			wantOK: true,
		},
		{
			name:   "bare metric with trailing timestamp",
			line:   "promtail_files_active_total 2 1712345678",
			want:   Record{Name: "promtail_files_active_total", Labels: map[string]string{}, Value: 2},
			wantOK: true,
		},
		{
			name: "labeled metric",
			line: `promtail_stream_lag_seconds{filename="/var/log/rhn/rhn_web_ui.log"} 2.5`,
			want: Record{
				Name:   "promtail_stream_lag_seconds",
				Labels: map[string]string{"filename": "/var/log/rhn/rhn_web_ui.log"},
				Value:  2.5,
			},
			wantOK: true,
		},
		{
			name: "trailing timestamp ignored",
			line: `up{job="exporter"} 1 1712345678`,
			want: Record{
				Name:   "up",
				Labels: map[string]string{"job": "exporter"},
				Value:  1,
			},
			wantOK: true,
		},
		{
			name: "escaped quote in label value",
			line: `m{k="a\"b"} 1`,
			want: Record{
				Name:   "m",
				Labels: map[string]string{"k": `a"b`},
				Value:  1,
			},
			wantOK: true,
		},
		{name: "comment", line: "# HELP up Up", wantOK: false},
		{name: "blank", line: "   ", wantOK: false},
		{name: "no value", line: "metric_without_value", wantOK: false},
		{name: "bad value", line: "metric abc", wantOK: false},
		{name: "unbalanced braces", line: `m}{k="v" 1`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
