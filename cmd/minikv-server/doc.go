// Package main provides the entry point for minikv-server.
//
// The server is an in-memory key-value store speaking the Redis
// serialization protocol (RESP):
//
//   - TCP listener with per-connection command loop
//   - PING, ECHO, GET, SET and CONFIG GET commands
//   - Optional Prometheus metrics endpoint
//
// Usage:
//
//	minikv-server [flags]
//	minikv-server --config /path/to/config.yaml
//
// The server loads configuration, initializes infrastructure
// components and starts all configured listeners.
package main
