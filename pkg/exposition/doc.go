// Package exposition parses plain-text metric exposition payloads into
// typed records.
//
// The parser is intentionally best effort: the exporters scraped by
// fleethealth publish while their data sources are still warming up, so
// individual malformed lines are skipped rather than failing the whole
// payload. A payload that yields no records for a required family is the
// caller's signal that the exporter is not ready yet, not a parse error.
package exposition
