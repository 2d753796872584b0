// Package logger provides structured logging for minikv.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: construction, level control and the default logger
//   - context.go: context propagation of the logger and connection ids
//   - clip.go: truncation of oversized string attributes
//
// The level is held in a process-wide slog.LevelVar, so SetLevel takes
// effect on every logger already created.
package logger
