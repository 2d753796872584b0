// Package config holds minikv-cli preferences read from ~/.minikv/cli.yaml
// and MINIKV_CLI_* environment variables. Command-line flags override both.
package config
