// Package config provides server configuration for minikv.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (address syntax, port conflicts, limits)
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and MINIKV_* environment variables on top of Default().
package config
