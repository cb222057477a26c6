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

package logquery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleethealth/pkg/errors"
)

const vectorResponse = `{
	"status": "success",
	"data": {
		"resultType": "vector",
		"result": [
			{"metric": {"filename": "/var/log/app/error.log"}, "value": [1700000000, "42"]},
			{"metric": {"filename": "/var/log/app/web.log"}, "value": [1700000000, "7"]},
			{"metric": {}, "value": [1700000000, "99"]},
			{"metric": {"filename": "/var/log/app/bad.log"}, "value": [1700000000, "nope"]}
		]
	}
}`

func newQueryClient(srv *httptest.Server) *Client {
	return &Client{
		HTTP:    srv.Client(),
		BaseURL: srv.URL,
		Limit:   100,
	}
}

func TestErrorStats(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/loki/api/v1/query", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, vectorResponse)
	}))
	defer srv.Close()

	stats, err := newQueryClient(srv).ErrorStats(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "[7d]")
	assert.Equal(t, "7d", stats.Window)
	assert.Equal(t, 49, stats.TotalErrors, "series without filename or with bad values are skipped")

	require.Len(t, stats.Files, 2)
	assert.Equal(t, FileCount{File: "/var/log/app/error.log", Count: 42}, stats.Files[0])
	assert.Equal(t, FileCount{File: "/var/log/app/web.log", Count: 7}, stats.Files[1])
}

func TestErrorStatsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","data":{"resultType":"vector","result":[]}}`)
	}))
	defer srv.Close()

	stats, err := newQueryClient(srv).ErrorStats(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalErrors)
	assert.Empty(t, stats.Files)
	assert.Equal(t, "1d", stats.Window)
}

func TestErrorStatsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newQueryClient(srv).ErrorStats(context.Background(), time.Hour)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestErrorStatsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := &Client{HTTP: &http.Client{Timeout: time.Second}, BaseURL: srv.URL, Limit: 10}
	_, err := c.ErrorStats(context.Background(), time.Hour)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "7d", formatWindow(7*24*time.Hour))
	assert.Equal(t, "36h", formatWindow(36*time.Hour))
	assert.Equal(t, "90s", formatWindow(90*time.Second))
	assert.Equal(t, "7d", formatWindow(0), "non-positive windows use the default")
}
