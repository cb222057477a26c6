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
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
)

// Readiness tokens returned by the ingest and shipper readiness endpoints.
const (
	ingestReadyToken  = "ready"
	shipperReadyToken = "Ready"
)

// Monitor polls the log pipeline's ingest and shipper endpoints until the
// convergence predicate holds or the timeout elapses. A Monitor owns its
// HTTP client and shares no state with concurrent operations.
type Monitor struct {
	// Client is the HTTP client used for all endpoint queries.
	Client *http.Client

	// IngestURL is the base URL of the ingest pipeline, e.g.
	// "http://server:3100".
	IngestURL string

	// ShipperURL is the base URL of the shipper's metrics/readiness
	// server, e.g. "http://server:9081".
	ShipperURL string

	// Criteria are the convergence thresholds.
	Criteria Criteria

	// Interval is the poll cadence.
	Interval time.Duration

	// Timeout bounds the whole wait. It is the only escape hatch for a
	// pipeline that never converges, including the case of a tailed file
	// that is appended faster than it drains.
	Timeout time.Duration
}

// NewMonitor creates a Monitor for the pipeline deployed on host, using
// default ports, cadence, and lag threshold.
func NewMonitor(host string, targetCount int, timeout time.Duration) *Monitor {
	return &Monitor{
		Client:     &http.Client{Timeout: defaults.HTTPClientTimeout},
		IngestURL:  fmt.Sprintf("http://%s:%d", host, defaults.IngestPort),
		ShipperURL: fmt.Sprintf("http://%s:%d", host, defaults.ShipperPort),
		Criteria: Criteria{
			TargetCount:  targetCount,
			LagThreshold: defaults.StreamLagThreshold,
		},
		Interval: defaults.ReadinessInterval,
		Timeout:  timeout,
	}
}

// Await blocks until the pipeline converges or the timeout elapses.
// Endpoint errors during a tick are not fatal; the tick simply does not
// converge. A timeout returns a TIMEOUT error naming the sub-conditions
// that never held so the operator can tell which signal stalled.
func (m *Monitor) Await(ctx context.Context) error {
	start := time.Now()
	last := &State{}

	err := wait.PollUntilContextTimeout(ctx, m.Interval, m.Timeout, false,
		func(ctx context.Context) (bool, error) {
			state, complete := m.observe(ctx)
			// carry MetricsSeen across ticks so one missed scrape does
			// not reset the no-metrics-yet diagnostics
			state.MetricsSeen = state.MetricsSeen || last.MetricsSeen
			// the final tick can race the deadline: its queries fail on
			// the expiring context and a zeroed state would misname the
			// stalled signals, so only complete observations are kept
			// for the timeout diagnostics
			if complete {
				last = state
			} else {
				last.MetricsSeen = state.MetricsSeen
			}

			converged := state.Converged(m.Criteria)
			status := tickWaiting
			if converged {
				status = tickReady
			}
			readinessTicksTotal.WithLabelValues(status).Inc()

			slog.Debug("readiness tick",
				"activeTargets", state.ActiveTargets,
				"activeFiles", state.ActiveFiles,
				"lags", len(state.StreamLags),
				"ingestReady", state.IngestReady,
				"shipperReady", state.ShipperReady,
				"converged", converged,
			)
			return converged, nil
		},
	)
	if err != nil {
		return errors.WrapWithContext(
			errors.ErrCodeTimeout,
			"timed out waiting for the log pipeline to become ready",
			err,
			map[string]any{
				"pending":       last.Pending(m.Criteria),
				"activeTargets": last.ActiveTargets,
				"activeFiles":   last.ActiveFiles,
				"streamLags":    last.StreamLags,
				"ingestReady":   last.IngestReady,
				"shipperReady":  last.ShipperReady,
				"metricsSeen":   last.MetricsSeen,
				"timeout":       m.Timeout.String(),
			},
		)
	}

	readinessWaitDuration.Observe(time.Since(start).Seconds())
	slog.Info("log pipeline is ready to receive requests",
		"waited", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

// observe performs one tick's queries. Both endpoints are queried before
// the predicate is evaluated; query failures leave the corresponding
// signals at their zero value. complete is true only when the two gating
// queries (shipper metrics, ingest readiness) both answered.
func (m *Monitor) observe(ctx context.Context) (state *State, complete bool) {
	state = &State{StreamLags: map[string]float64{}}
	complete = true

	if payload, ok := m.fetch(ctx, m.ShipperURL+"/metrics"); ok {
		stats := parseShipperPayload(payload)
		state.ActiveTargets = stats.activeTargets
		state.ActiveFiles = stats.activeFiles
		state.StreamLags = stats.streamLags
		state.MetricsSeen = true
	} else {
		complete = false
	}

	if body, ok := m.fetch(ctx, m.IngestURL+"/ready"); ok {
		state.IngestReady = strings.TrimSpace(body) == ingestReadyToken
	} else {
		complete = false
	}

	if body, ok := m.fetch(ctx, m.ShipperURL+"/ready"); ok {
		state.ShipperReady = strings.TrimSpace(body) == shipperReadyToken
	}

	return state, complete
}

// fetch GETs a URL and returns its body. ok is false on transport errors
// and non-200 responses.
func (m *Monitor) fetch(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}

	resp, err := m.Client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(body), true
}
