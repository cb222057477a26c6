// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// The error codes mirror the failure taxonomy of the diagnostic pipeline:
// transient endpoint failures escalate to SERVICE_UNAVAILABLE once retries
// are exhausted, the readiness convergence deadline surfaces as TIMEOUT, and
// incomplete exporter data is NOT_READY (retryable by the caller).
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "log pipeline never converged",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "host":         host,
//	        "activeTargets": state.ActiveTargets,
//	    },
//	)
package errors
