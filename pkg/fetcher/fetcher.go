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

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
	"github.com/fleetops/fleethealth/pkg/exposition"
	"github.com/fleetops/fleethealth/pkg/jobs"
)

// Fetcher retrieves the exporter's metric payload and aggregates it into a
// Snapshot. Fetchers are stateless: repeated calls are safe and share no
// mutable state.
type Fetcher struct {
	// Client is the HTTP client used for the scrape.
	Client *http.Client

	// MaxRetries bounds the attempts against the endpoint before the
	// fetch escalates as fatal.
	MaxRetries int

	// RetryInterval is the fixed sleep between attempts.
	RetryInterval time.Duration
}

// New creates a Fetcher with default retry policy and client timeouts.
func New() *Fetcher {
	return &Fetcher{
		Client:        &http.Client{Timeout: defaults.HTTPClientTimeout},
		MaxRetries:    defaults.FetchRetries,
		RetryInterval: defaults.FetchRetryInterval,
	}
}

// Fetch retrieves the metrics payload from http://host:port/ and aggregates
// it into a Snapshot.
//
// Network-level failures are retried up to MaxRetries with a fixed sleep in
// between; exhaustion returns a SERVICE_UNAVAILABLE error and the caller is
// expected to terminate the run. A reachable endpoint whose payload is
// missing any of the three required families yields an empty Snapshot and a
// nil error: the exporter exists but has not computed its data yet.
func (f *Fetcher) Fetch(ctx context.Context, host string, port int) (*Snapshot, error) {
	payload, err := f.retrieve(ctx, fmt.Sprintf("http://%s:%d/", host, port))
	if err != nil {
		return nil, err
	}
	return aggregate(payload), nil
}

// retrieve performs the HTTP GET with bounded sequential retries.
func (f *Fetcher) retrieve(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= f.MaxRetries; attempt++ {
		start := time.Now()
		payload, err := f.get(ctx, url)
		if err == nil {
			fetchAttemptsTotal.WithLabelValues(statusSuccess).Inc()
			fetchDuration.Observe(time.Since(start).Seconds())
			return payload, nil
		}
		fetchAttemptsTotal.WithLabelValues(statusError).Inc()
		lastErr = err

		if attempt == f.MaxRetries {
			break
		}

		slog.Info("retrying metrics fetch",
			"url", url,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", errors.Wrap(errors.ErrCodeTimeout, "metrics fetch canceled", ctx.Err())
		case <-time.After(f.RetryInterval):
		}
	}

	return "", errors.WrapWithContext(
		errors.ErrCodeUnavailable,
		"failed to fetch metrics from exporter",
		lastErr,
		map[string]any{
			"url":     url,
			"retries": f.MaxRetries,
		},
	)
}

// get performs a single GET attempt and returns the body.
// Non-200 responses count as attempt failures.
func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// aggregate parses the payload and folds the three required families into a
// Snapshot. Any family parsing to zero records yields the empty Snapshot.
func aggregate(payload string) *Snapshot {
	families := exposition.Parse(payload,
		exposition.Pattern{Name: FamilyJobs, Labels: []string{"fun", "name"}},
		exposition.Pattern{Name: FamilyMasterStats, Labels: []string{"name"}},
		exposition.Pattern{Name: FamilySummary, Labels: []string{"name"}},
	)

	jobRecords := families[FamilyJobs]
	statRecords := families[FamilyMasterStats]
	summaryRecords := families[FamilySummary]

	if len(jobRecords) == 0 || len(statRecords) == 0 || len(summaryRecords) == 0 {
		slog.Warn("some metric families are still missing, wait and fetch again",
			"jobs", len(jobRecords),
			"masterStats", len(statRecords),
			"summary", len(summaryRecords),
		)
		return &Snapshot{}
	}

	snap := &Snapshot{
		Jobs:        jobs.FoldRecords(jobRecords),
		MasterStats: foldNamed(statRecords),
		Summary:     foldNamed(summaryRecords),
	}

	slog.Debug("metrics collected",
		"jobs", len(snap.Jobs),
		"masterStats", len(snap.MasterStats),
		"summary", len(snap.Summary),
	)
	return snap
}

// foldNamed indexes records by their name label. Later duplicates win.
func foldNamed(records []exposition.Record) map[string]float64 {
	out := make(map[string]float64, len(records))
	for _, rec := range records {
		out[rec.Label("name")] = rec.Value
	}
	return out
}
