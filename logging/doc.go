// Package logging provides a minimal logging interface and adapters for goswarm.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the orchestration loop and gateways use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - SwarmLogger with run/agent context helpers and domain logging methods
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	swarm := goswarm.New(goswarm.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
