// Package exitcode defines named exit codes for the async-demos CLI.
package exitcode

import (
	"context"
	"errors"

	"github.com/CodexForgeBR/async-demos/internal/retry"
)

// Exit code constants.
const (
	Success          = 0   // Command completed
	Error            = 1   // Invalid args, misconfiguration, request failure
	RetriesExhausted = 2   // Every attempt of a retried operation failed
	Interrupted      = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case RetriesExhausted:
		return "RetriesExhausted"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}

// FromError maps a command error to an exit code.
func FromError(err error) int {
	var exhausted *retry.RetriesExhaustedError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, context.Canceled):
		return Interrupted
	case errors.As(err, &exhausted):
		return RetriesExhausted
	default:
		return Error
	}
}
