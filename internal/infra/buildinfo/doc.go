// Package buildinfo exposes the version, commit and build time stamped
// into minikv binaries.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/minikv/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo
