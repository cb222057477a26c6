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
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fleetops/fleethealth/pkg/fetcher"
	"github.com/fleetops/fleethealth/pkg/header"
	"github.com/fleetops/fleethealth/pkg/logquery"
	"github.com/fleetops/fleethealth/pkg/services"
)

// APIVersion is the schema version of serialized health reports.
const APIVersion = "v1"

// Row is one named value in a report section.
type Row struct {
	// Name is the raw metric or function name.
	Name string `json:"name" yaml:"name"`

	// Title is the human-readable form of Name.
	Title string `json:"title" yaml:"title"`

	// Value is the metric value.
	Value float64 `json:"value" yaml:"value"`
}

// HealthReport is the end product of a diagnostic run: the fetched metrics
// reshaped into stable, sorted sections plus derived findings.
type HealthReport struct {
	header.Header `json:",inline" yaml:",inline"`

	// Server is the fleet server the report describes.
	Server string `json:"server" yaml:"server"`

	// Jobs lists scheduler job counts per function, busiest first.
	Jobs []Row `json:"jobs" yaml:"jobs"`

	// MasterStats lists master process gauges, sorted by name.
	MasterStats []Row `json:"masterStats" yaml:"masterStats"`

	// Summary lists fleet-wide inventory counters, sorted by name.
	Summary []Row `json:"summary" yaml:"summary"`

	// Services lists the systemd unit statuses when the run checked them.
	Services []services.Status `json:"services,omitempty" yaml:"services,omitempty"`

	// LogStats holds error-log statistics when the run requested them.
	LogStats *logquery.Stats `json:"logStats,omitempty" yaml:"logStats,omitempty"`

	// Findings are the conditions the run derived from the data.
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Builder assembles a HealthReport from the artifacts of a diagnostic run.
type Builder struct {
	server   string
	version  string
	snapshot *fetcher.Snapshot
	services []services.Status
	logStats *logquery.Stats
}

// NewBuilder creates a Builder for the given fleet server. version is the
// tool version recorded in the report header.
func NewBuilder(server, version string) *Builder {
	return &Builder{
		server:  server,
		version: version,
	}
}

// WithSnapshot sets the metrics snapshot the report is built from.
func (b *Builder) WithSnapshot(s *fetcher.Snapshot) *Builder {
	b.snapshot = s
	return b
}

// WithServices attaches systemd unit statuses to the report.
func (b *Builder) WithServices(statuses []services.Status) *Builder {
	b.services = statuses
	return b
}

// WithLogStats attaches error-log statistics to the report.
func (b *Builder) WithLogStats(s *logquery.Stats) *Builder {
	b.logStats = s
	return b
}

// Build produces the report. Sections are deterministically ordered: jobs
// descending by count with name as tie-breaker, stats and summary
// ascending by name.
func (b *Builder) Build() *HealthReport {
	r := &HealthReport{
		Server:   b.server,
		Services: b.services,
		LogStats: b.logStats,
	}
	r.Init(header.KindHealthReport, APIVersion, b.version)
	r.Metadata["server"] = b.server

	snap := b.snapshot
	if snap == nil {
		snap = &fetcher.Snapshot{}
	}

	r.Jobs = rowsByValue(snap.Jobs)
	r.MasterStats = rowsByName(snap.MasterStats)
	r.Summary = rowsByName(snap.Summary)
	r.Findings = deriveFindings(snap, b.services, b.logStats)

	return r
}

var titleCaser = cases.Title(language.English)

// humanize turns a snake_case metric name into a display title. Tokens
// leading with a digit are units ("24h") and keep their case.
func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" || (w[0] >= '0' && w[0] <= '9') {
			continue
		}
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

func rowsByName(values map[string]float64) []Row {
	rows := toRows(values)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func rowsByValue(values map[string]float64) []Row {
	rows := toRows(values)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func toRows(values map[string]float64) []Row {
	rows := make([]Row, 0, len(values))
	for name, value := range values {
		rows = append(rows, Row{
			Name:  name,
			Title: humanize(name),
			Value: value,
		})
	}
	return rows
}
