// Package main provides the entry point for minikv-server.
//
// minikv-server serves a small Redis-compatible key-value store over RESP.
// Every connection has its own key namespace, which is discarded when the
// connection closes.
//
// Usage:
//
//	minikv-server [flags]
//	minikv-server --config /path/to/config.yaml
//
// Configuration is layered: built-in defaults, then the YAML file, then
// MINIKV_* environment variables. When a config file is given, changes to
// log.level are applied without a restart.
package main
