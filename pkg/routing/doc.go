// Package routing implements the multi-provider request router: the
// failover loop, selection strategies, per-provider rate and cost
// limiting, performance tracking, and usage/cost reporting.
//
// # Architecture
//
// The Router owns one providers.Provider, ProviderPolicy, UsageTracker
// and PerformanceStats per configured provider. Each Generate call
// computes a deterministic ordered candidate list from the active
// strategy, then attempts candidates sequentially: a candidate that is
// disabled, over its limits, or unavailable is skipped; a candidate
// whose call fails with a classified provider error marks provider
// state and yields to the next candidate. Only exhaustion of all
// candidates surfaces an error, and it is the last error observed.
//
// # Concurrency
//
// The Router is safe for concurrent use. Per-provider mutable state is
// guarded by per-provider locks; the policy map and active strategy are
// guarded by the router lock; the round-robin cursor is atomic. No
// global lock is held across provider calls.
package routing
