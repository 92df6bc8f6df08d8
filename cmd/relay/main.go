// Relay is a multi-provider AI request router.
//
// It sits between callers wanting "generate text" and a set of
// interchangeable providers, providing:
//   - Selection strategies (priority failover, round-robin, fastest, least-cost)
//   - Sliding-window rate and cost limiting per provider
//   - Automatic failover with provider cool-down and quota handling
//   - Usage, cost and performance tracking with durable persistence
//
// Usage:
//
//	# Start with default configuration
//	relay run
//
//	# Start with a custom configuration file
//	relay run --config /path/to/relay.yaml
//
//	# Validate configuration and provider credentials
//	relay validate
//
//	# Show version information
//	relay version
package main

func main() {
	Execute()
}
