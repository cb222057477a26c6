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
	"fmt"
	"sort"
	"strings"
)

// JobRecord is one raw scheduler job entry as returned by the job-listing
// call. Records live for a single gather cycle.
type JobRecord struct {
	// Function is the executed operation name, e.g. "state.apply".
	Function string
	// Arguments is the ordered argument list; may be empty.
	Arguments []Argument
	// ID is the opaque job identifier.
	ID string
}

// Argument is a sealed union over the shapes a scheduler job argument can
// take. The job source is loosely typed: an argument is sometimes a scalar,
// sometimes a mapping, and the mapping may or may not carry a module list.
// Matching on the concrete type keeps the classification rule exhaustive
// instead of probing attributes at runtime.
type Argument interface {
	isArgument()
	String() string
}

// Scalar is a non-mapping argument, carried in its string form.
type Scalar struct {
	Value string
}

func (Scalar) isArgument() {}

// String returns the scalar value.
func (s Scalar) String() string { return s.Value }

// ModuleSet is a mapping argument carrying a non-empty "mods" module list.
type ModuleSet struct {
	Mods []string
}

func (ModuleSet) isArgument() {}

// String joins the module names with underscores.
func (m ModuleSet) String() string { return strings.Join(m.Mods, "_") }

// Mapping is a mapping argument without a usable "mods" entry.
type Mapping struct {
	Data map[string]any
}

func (Mapping) isArgument() {}

// String renders the mapping with deterministic key order.
func (m Mapping) String() string {
	keys := make([]string, 0, len(m.Data))
	for k := range m.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, m.Data[k])
	}
	b.WriteByte('}')
	return b.String()
}

// ToArgument converts a loosely typed decoded value into an Argument.
// Mappings with a non-empty "mods" list become a ModuleSet, other mappings
// a Mapping, and everything else a Scalar in its string form. A mapping
// whose "mods" entry is empty or not a list is treated as a plain Mapping,
// matching the job source's truthiness semantics.
func ToArgument(v any) Argument {
	m, ok := v.(map[string]any)
	if !ok {
		return Scalar{Value: fmt.Sprintf("%v", v)}
	}

	mods := toStringList(m["mods"])
	if len(mods) > 0 {
		return ModuleSet{Mods: mods}
	}
	return Mapping{Data: m}
}

// toStringList converts a decoded JSON/YAML list into strings.
// Returns nil when v is not a list.
func toStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
