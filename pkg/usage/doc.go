// Package usage defines the usage metric record and the sinks that
// persist it.
//
// The router emits one Metric per successful generation call. Sinks are
// fire-and-forget: recording failures are logged by the router and never
// surface to generation callers. Two persistent sinks are provided, an
// in-memory bounded ring for development and a SQLite store with
// cron-scheduled retention pruning for production.
package usage
