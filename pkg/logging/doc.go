// Package logging provides structured logging utilities for fleethealth components.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// and conventions for consistent logging across the CLI and the exporter
// daemon. It supports environment-based log level configuration,
// module/version context injection, and automatic source location tracking
// for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("fleethealth", "v1.0.0")
//
//	    slog.Info("readiness wait started", "host", host)
//	    slog.Debug("tick state", "state", state)
//	    slog.Error("fetch failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("fleethealthd", "v1.0.0", "debug")
//	logger.Info("exporter starting", "port", 9000)
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug fleethealth run
//	LOG_LEVEL=error fleethealthd
//
// If LOG_LEVEL is not set, defaults to INFO level. The --log-level CLI flag
// takes precedence via SetDefaultStructuredLoggerWithLevel.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "exporter started",
//	    "module": "fleethealthd",
//	    "version": "v1.0.0",
//	    "port": 9000
//	}
package logging
