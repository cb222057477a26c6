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
	"strings"

	"github.com/fleetops/fleethealth/pkg/exposition"
)

// Shipper metric name suffixes. Matching by suffix keeps the monitor
// agnostic of the shipper's metric namespace (promtail_..., etc.).
const (
	targetsActiveSuffix = "_targets_active_total"
	filesActiveSuffix   = "_files_active_total"
	streamLagSuffix     = "_stream_lag_seconds"

	lagFilenameLabel = "filename"
)

// shipperStats is the slice of State derived from the shipper's metrics
// payload alone.
type shipperStats struct {
	activeTargets int
	activeFiles   int
	streamLags    map[string]float64
}

// parseShipperPayload extracts target, file, and per-file lag stats from
// the shipper's metric exposition payload. Unrelated and malformed lines
// are ignored.
func parseShipperPayload(payload string) shipperStats {
	stats := shipperStats{streamLags: make(map[string]float64)}

	for _, line := range strings.Split(payload, "\n") {
		rec, ok := exposition.ParseLine(line)
		if !ok {
			continue
		}

		switch {
		case strings.HasSuffix(rec.Name, targetsActiveSuffix):
			stats.activeTargets = int(rec.Value)
		case strings.HasSuffix(rec.Name, filesActiveSuffix):
			stats.activeFiles = int(rec.Value)
		case strings.HasSuffix(rec.Name, streamLagSuffix):
			filename := rec.Label(lagFilenameLabel)
			if filename == "" {
				continue
			}
			stats.streamLags[filename] = rec.Value
		}
	}

	return stats
}
