// Package readiness detects when the distributed log pipeline (ingest plus
// shipper) has reached a consistent, query-able state.
//
// # Convergence
//
// The monitor polls two independent signals on a fixed cadence: the ingest
// pipeline's readiness endpoint and the shipper's metrics endpoint. The
// pipeline counts as ready only when every sub-condition of the convergence
// predicate holds on the same tick:
//
//   - the shipper scrapes at least the expected number of targets
//   - lag data exists, or nothing is being tailed at all
//   - no tailed file is ten or more seconds behind
//   - the backlog is fully drained (no lag entries while files are
//     still actively tailed)
//   - the ingest endpoint reports ready
//
// Each sub-condition is a named method on State so it can be unit-tested
// and reported independently; a timeout error names the conditions that
// never held.
//
// # Bounded wait
//
// If the shipper metrics endpoint never responds, or a tailed file is
// appended faster than the shipper drains it, the predicate can never be
// satisfied. The wait timeout is the only escape hatch for those cases, and
// a timeout is fatal for the run.
package readiness
