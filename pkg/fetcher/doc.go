// Package fetcher retrieves structured health metrics from the fleethealthd
// exporter and aggregates them into snapshots.
//
// The fetcher distinguishes two failure modes the caller must handle
// differently: an unreachable endpoint (retried with a fixed interval, then
// fatal) and a reachable endpoint whose exporter has not computed its data
// yet (an empty Snapshot, retryable at a higher level).
package fetcher
