// Ceres is the resilience runtime for the NutriHQ services.
//
// It hosts the in-process response caches, per-user rate limits and
// quotas, the food log store, and the maintenance jobs that keep them
// healthy, and exposes operational state over HTTP.
//
// Usage:
//
//	# Start the runtime with default configuration
//	ceres run
//
//	# Start with a custom configuration file
//	ceres run --config /path/to/config.yaml
//
//	# Validate configuration and print the effective values
//	ceres validate --output json
//
//	# Show version information
//	ceres version
package main

func main() {
	Execute()
}
