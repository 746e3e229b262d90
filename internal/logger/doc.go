// Package logger wraps go.uber.org/zap with a process-wide sugared logger,
// context helpers (ToContext/FromContext/WithName/WithKV), level parsing and
// leveled convenience functions used throughout the binaries.
package logger
