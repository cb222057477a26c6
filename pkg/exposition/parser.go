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

package exposition

import (
	"strconv"
	"strings"
)

// Pattern selects a metric family of interest by exact name and lists the
// label keys that must be present on a line for it to be extracted.
// Labels not listed are ignored; lines missing a required label are skipped.
type Pattern struct {
	Name   string
	Labels []string
}

// Record is one exposed metric instance parsed from a payload line.
// It is immutable once parsed.
type Record struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Label returns the value of the named label, or the empty string when the
// label is not present.
func (r Record) Label(key string) string {
	return r.Labels[key]
}

// Parse extracts the records matching each pattern from a plain-text metric
// exposition payload, one metric per line in the form:
//
//	name{label="value",...} number
//
// The result maps pattern name to the matching records in payload order.
// Parsing is best effort: comment lines, malformed lines, lines whose value
// token is not a number, and lines missing a required label are skipped.
// An empty payload yields an empty (never nil) slice for every pattern.
func Parse(payload string, patterns ...Pattern) map[string][]Record {
	out := make(map[string][]Record, len(patterns))
	for _, p := range patterns {
		out[p.Name] = []Record{}
	}

	for _, line := range strings.Split(payload, "\n") {
		rec, ok := ParseLine(line)
		if !ok {
			continue
		}
		for _, p := range patterns {
			if rec.Name != p.Name {
				continue
			}
			if !hasLabels(rec, p.Labels) {
				continue
			}
			out[p.Name] = append(out[p.Name], rec)
			break
		}
	}

	return out
}

// ParseLine parses a single exposition line into a Record. The boolean
// result is false for blank lines, comments, and lines that do not follow
// the name/labels/value grammar.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Record{}, false
	}

	name := ""
	labels := map[string]string{}

	if open := strings.IndexByte(line, '{'); open >= 0 {
		close := strings.LastIndexByte(line, '}')
		if close < open {
			return Record{}, false
		}
		name = strings.TrimSpace(line[:open])
		if name == "" {
			return Record{}, false
		}
		var ok bool
		labels, ok = parseLabels(line[open+1 : close])
		if !ok {
			return Record{}, false
		}
		line = name + " " + strings.TrimSpace(line[close+1:])
	}

	fields := strings.Fields(line)
	// a trailing timestamp after the value is allowed and ignored
	if len(fields) < 2 {
		return Record{}, false
	}
	if name == "" {
		name = fields[0]
	}

	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Record{}, false
	}

	return Record{Name: name, Labels: labels, Value: value}, true
}

// parseLabels parses the body of a label block, label="value" pairs
// separated by commas. Escaped quotes and backslashes inside values are
// unescaped.
func parseLabels(body string) (map[string]string, bool) {
	labels := make(map[string]string)
	rest := strings.TrimSpace(body)

	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return nil, false
		}
		key := strings.TrimSpace(rest[:eq])
		rest = strings.TrimSpace(rest[eq+1:])
		if key == "" || !strings.HasPrefix(rest, `"`) {
			return nil, false
		}

		value, remainder, ok := scanQuoted(rest)
		if !ok {
			return nil, false
		}
		labels[key] = value

		rest = strings.TrimSpace(remainder)
		rest = strings.TrimPrefix(rest, ",")
		rest = strings.TrimSpace(rest)
	}

	return labels, true
}

// scanQuoted consumes a double-quoted string from the front of s and
// returns the unescaped value and the remainder after the closing quote.
func scanQuoted(s string) (value, remainder string, ok bool) {
	var b strings.Builder
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			switch c {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(c)
			}
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(c)
		}
	}
	return "", "", false
}

// hasLabels reports whether the record carries every required label key.
func hasLabels(rec Record, required []string) bool {
	for _, key := range required {
		if _, ok := rec.Labels[key]; !ok {
			return false
		}
	}
	return true
}
