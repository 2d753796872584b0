// Package main provides the entry point for minikv-cli.
//
// minikv-cli sends commands to a minikv-server, either one at a time or
// from an interactive prompt that keeps a single connection open.
//
// Usage:
//
//	minikv-cli [flags] [COMMAND [ARGS...]]
//	minikv-cli -s 127.0.0.1:6378 exec SET greeting hello
//	minikv-cli -o json ping
//	minikv-cli repl
package main
