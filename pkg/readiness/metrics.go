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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	tickReady   = "ready"
	tickWaiting = "waiting"
)

var (
	readinessTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleethealth_readiness_ticks_total",
			Help: "Total number of readiness poll ticks",
		},
		[]string{"status"}, // ready or waiting
	)

	readinessWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleethealth_readiness_wait_duration_seconds",
			Help:    "Time until the log pipeline convergence predicate held",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)
