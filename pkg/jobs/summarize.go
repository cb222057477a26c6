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

package jobs

import (
	"github.com/fleetops/fleethealth/pkg/exposition"
)

// stateApply is the one function whose jobs are bucketed by their first
// argument rather than by function name alone.
const stateApply = "state.apply"

// Summary groups scheduler jobs into named buckets.
// Total always equals the number of summarized jobs.
type Summary struct {
	Functions map[string]int
	Total     int
}

// Classify returns the summary bucket tag for a job.
//
// state.apply jobs are split by what they applied: a first argument carrying
// a module list yields "state.apply_<mod1>_<mod2>...", any other first
// argument yields "state.apply_<argument>". Jobs of every other function,
// and state.apply jobs without arguments, bucket under the bare function
// name.
func Classify(job JobRecord) string {
	if job.Function != stateApply || len(job.Arguments) == 0 {
		return job.Function
	}

	switch arg := job.Arguments[0].(type) {
	case ModuleSet:
		return stateApply + "_" + arg.String()
	case Scalar:
		return stateApply + "_" + arg.Value
	case Mapping:
		return stateApply + "_" + arg.String()
	default:
		return job.Function
	}
}

// Summarize folds raw job records into bucket counts. Grouping is
// associative and commutative: iteration order of the input map does not
// affect the result.
func Summarize(records map[string]JobRecord) Summary {
	summary := Summary{
		Functions: make(map[string]int, len(records)),
	}
	for _, job := range records {
		summary.Functions[Classify(job)]++
		summary.Total++
	}
	return summary
}

// FoldRecords sums already-exposed job metric records into per-bucket
// counts keyed by the function label. Duplicate tags sum.
func FoldRecords(records []exposition.Record) map[string]float64 {
	out := make(map[string]float64, len(records))
	for _, rec := range records {
		out[rec.Label("fun")] += rec.Value
	}
	return out
}
