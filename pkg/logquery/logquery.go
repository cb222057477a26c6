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

// Package logquery derives error-log statistics from the log ingest
// pipeline. It issues LogQL instant queries against the ingest HTTP API
// and folds the vector result into per-file error counts.
package logquery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
)

// errorQuery counts error lines per source file over the window. The
// window placeholder is filled in at query time.
const errorQuery = `sum by (filename) (count_over_time({job="fleet"} |~ "(?i)error" [%s]))`

// FileCount is the error-line count of one log file.
type FileCount struct {
	File  string `json:"file" yaml:"file"`
	Count int    `json:"count" yaml:"count"`
}

// Stats are the error-log statistics of one query window.
type Stats struct {
	// Window is the queried time window, e.g. "168h".
	Window string `json:"window" yaml:"window"`

	// TotalErrors is the sum of all per-file counts.
	TotalErrors int `json:"totalErrors" yaml:"totalErrors"`

	// Files lists the per-file counts, noisiest file first.
	Files []FileCount `json:"files" yaml:"files"`
}

// Client queries the log ingest pipeline's HTTP API.
type Client struct {
	// HTTP is the client used for all queries.
	HTTP *http.Client

	// BaseURL is the ingest pipeline base URL, e.g. "http://server:3100".
	BaseURL string

	// Limit caps the number of result series requested.
	Limit int
}

// NewClient creates a Client for the ingest pipeline on host, using
// default port and limits.
func NewClient(host string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: defaults.HTTPClientTimeout},
		BaseURL: fmt.Sprintf("http://%s:%d", host, defaults.IngestPort),
		Limit:   defaults.LogStatsLimit,
	}
}

// queryResponse mirrors the ingest API's instant query envelope.
type queryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Metric map[string]string `json:"metric"`
			Value  []any             `json:"value"`
		} `json:"result"`
	} `json:"data"`
}

// ErrorStats queries error-line counts per file over the given window.
func (c *Client) ErrorStats(ctx context.Context, window time.Duration) (*Stats, error) {
	logql := fmt.Sprintf(errorQuery, formatWindow(window))

	params := url.Values{}
	params.Set("query", logql)
	params.Set("limit", strconv.Itoa(c.Limit))
	endpoint := c.BaseURL + "/loki/api/v1/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal,
			"failed to create log query request", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable,
			"log ingest query failed", err,
			map[string]any{"url": c.BaseURL})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewWithContext(errors.ErrCodeUnavailable,
			"log ingest query returned an error status",
			map[string]any{
				"status": resp.Status,
				"body":   string(body),
			})
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal,
			"failed to decode log query response", err)
	}
	if payload.Status != "success" {
		return nil, errors.NewWithContext(errors.ErrCodeUnavailable,
			"log ingest query was not successful",
			map[string]any{"status": payload.Status})
	}

	return foldStats(&payload, formatWindow(window)), nil
}

// foldStats converts the query vector into sorted per-file counts.
// Series without a filename label or with a non-numeric value are skipped.
func foldStats(payload *queryResponse, window string) *Stats {
	stats := &Stats{
		Window: window,
		Files:  []FileCount{},
	}

	for _, series := range payload.Data.Result {
		file := series.Metric["filename"]
		if file == "" {
			continue
		}
		count, ok := vectorValue(series.Value)
		if !ok {
			continue
		}
		stats.Files = append(stats.Files, FileCount{File: file, Count: count})
		stats.TotalErrors += count
	}

	sort.Slice(stats.Files, func(i, j int) bool {
		if stats.Files[i].Count != stats.Files[j].Count {
			return stats.Files[i].Count > stats.Files[j].Count
		}
		return stats.Files[i].File < stats.Files[j].File
	})

	return stats
}

// vectorValue extracts the sample value from an instant query vector
// element, which arrives as [timestamp, "value"].
func vectorValue(value []any) (int, bool) {
	if len(value) != 2 {
		return 0, false
	}
	s, ok := value[1].(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// formatWindow renders a duration as a LogQL range selector, preferring
// whole days for readability.
func formatWindow(window time.Duration) string {
	if window <= 0 {
		window = time.Duration(defaults.LogStatsSinceDays) * 24 * time.Hour
	}
	if window%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(window/(24*time.Hour)))
	}
	if window%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(window/time.Hour))
	}
	return fmt.Sprintf("%ds", int(window/time.Second))
}
