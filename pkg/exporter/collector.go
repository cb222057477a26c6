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

package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetops/fleethealth/pkg/fetcher"
)

var (
	jobsDesc = prometheus.NewDesc(
		fetcher.FamilyJobs,
		"Scheduler job occurrences by function",
		[]string{"fun", "name"}, nil,
	)
	masterStatsDesc = prometheus.NewDesc(
		fetcher.FamilyMasterStats,
		"Master process and database gauges",
		[]string{"name"}, nil,
	)
	summaryDesc = prometheus.NewDesc(
		fetcher.FamilySummary,
		"Fleet-wide inventory counters",
		[]string{"name"}, nil,
	)
)

// Collector exposes the latest gathered Data as the three exporter metric
// families. Update and Collect may run concurrently.
type Collector struct {
	server string

	mu   sync.RWMutex
	data *Data
}

// NewCollector creates a Collector stamping every sample with the fleet
// server name.
func NewCollector(server string) *Collector {
	return &Collector{server: server}
}

// Update replaces the collected data with a fresh gathering cycle.
func (c *Collector) Update(data *Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- jobsDesc
	ch <- masterStatsDesc
	ch <- summaryDesc
}

// Collect implements prometheus.Collector. Before the first Update the
// collector emits nothing, which scrapers see as absent families.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	data := c.data
	c.mu.RUnlock()

	if data == nil {
		return
	}

	for fn, count := range data.Jobs {
		ch <- prometheus.MustNewConstMetric(
			jobsDesc, prometheus.GaugeValue, count, fn, c.server)
	}
	for name, value := range data.MasterStats {
		ch <- prometheus.MustNewConstMetric(
			masterStatsDesc, prometheus.GaugeValue, value, name)
	}
	for name, value := range data.Summary {
		ch <- prometheus.MustNewConstMetric(
			summaryDesc, prometheus.GaugeValue, value, name)
	}
}
