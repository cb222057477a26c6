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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetops/fleethealth/pkg/errors"
	"github.com/fleetops/fleethealth/pkg/jobs"
)

// Data is one gathering cycle's worth of metrics.
type Data struct {
	// Jobs maps scheduler job classification to occurrence count.
	Jobs map[string]float64

	// MasterStats are master process and database gauges.
	MasterStats map[string]float64

	// Summary are fleet-wide inventory counters.
	Summary map[string]float64
}

// Gatherer produces the exporter's data. Implementations must be safe for
// use from the refresh loop.
type Gatherer interface {
	Gather(ctx context.Context) (*Data, error)
}

// Summary counter queries, keyed by the metric name they feed.
var summaryQueries = map[string]string{
	"channels": `SELECT COUNT(*) FROM channels`,
	"packages": `SELECT COUNT(*) FROM packages`,
	"systems":  `SELECT COUNT(*) FROM systems`,
	"actions":  `SELECT COUNT(*) FROM actions`,
	"actions_completed_last_24h": `SELECT COUNT(*) FROM actions
		WHERE status = 'completed' AND updated_at > now() - interval '24 hours'`,
	"actions_failed_last_24h": `SELECT COUNT(*) FROM actions
		WHERE status = 'failed' AND updated_at > now() - interval '24 hours'`,
}

const jobsQuery = `SELECT id, function, arguments FROM scheduler_jobs`

var masterStatQueries = map[string]string{
	"db_connections": `SELECT COUNT(*) FROM pg_stat_activity
		WHERE datname = current_database()`,
	"db_size_bytes":     `SELECT pg_database_size(current_database())`,
	"scheduler_backlog": `SELECT COUNT(*) FROM scheduler_jobs WHERE started_at IS NULL`,
}

// Store gathers exporter data from the fleet server's PostgreSQL database.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the fleet database described by cfg.
func NewStore(ctx context.Context, cfg DBConfig) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable,
			"failed to create database pool", err,
			map[string]any{"host": cfg.Host, "db": cfg.Name})
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable,
			"failed to reach the fleet database", err,
			map[string]any{"host": cfg.Host, "db": cfg.Name})
	}
	return &Store{pool: pool}, nil
}

// Gather runs all queries for one cycle. Individual summary or stat
// queries failing are logged and skipped; the job query failing fails the
// cycle since the job family would otherwise silently vanish.
func (s *Store) Gather(ctx context.Context) (*Data, error) {
	data := &Data{
		Jobs:        map[string]float64{},
		MasterStats: map[string]float64{},
		Summary:     map[string]float64{},
	}

	for name, query := range summaryQueries {
		v, err := s.count(ctx, query)
		if err != nil {
			slog.Warn("summary query failed", "name", name, "error", err)
			continue
		}
		data.Summary[name] = v
	}

	for name, query := range masterStatQueries {
		v, err := s.count(ctx, query)
		if err != nil {
			slog.Warn("master stat query failed", "name", name, "error", err)
			continue
		}
		data.MasterStats[name] = v
	}

	records, err := s.jobRecords(ctx)
	if err != nil {
		return nil, err
	}
	summary := jobs.Summarize(records)
	for fn, count := range summary.Functions {
		data.Jobs[fn] = float64(count)
	}

	return data, nil
}

func (s *Store) count(ctx context.Context, query string) (float64, error) {
	var v int64
	if err := s.pool.QueryRow(ctx, query).Scan(&v); err != nil {
		return 0, err
	}
	return float64(v), nil
}

// jobRecords loads the scheduler job table. Arguments are stored as a
// JSON array; rows with malformed arguments keep the decodable prefix.
func (s *Store) jobRecords(ctx context.Context) (map[string]jobs.JobRecord, error) {
	rows, err := s.pool.Query(ctx, jobsQuery)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable,
			"failed to query scheduler jobs", err)
	}
	defer rows.Close()

	records := map[string]jobs.JobRecord{}
	for rows.Next() {
		var (
			id       int64
			function string
			argsJSON []byte
		)
		if err := rows.Scan(&id, &function, &argsJSON); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal,
				"failed to scan scheduler job row", err)
		}

		record := jobs.JobRecord{
			ID:       fmt.Sprintf("%d", id),
			Function: function,
		}
		if len(argsJSON) > 0 {
			var raw []any
			if err := json.Unmarshal(argsJSON, &raw); err != nil {
				slog.Warn("skipping malformed job arguments", "job", id, "error", err)
			} else {
				for _, a := range raw {
					record.Arguments = append(record.Arguments, jobs.ToArgument(a))
				}
			}
		}
		records[record.ID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable,
			"scheduler job query aborted", err)
	}
	return records, nil
}

// Close releases the database pool.
func (s *Store) Close() {
	s.pool.Close()
}
