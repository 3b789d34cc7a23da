package retry

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Do when the attempt budget or delay is out of range.
var ErrInvalidConfig = errors.New("invalid retry config")

// RetriesExhaustedError reports that every attempt failed.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	msg := "<nil>"
	if e.Last != nil {
		msg = e.Last.Error()
	}
	return fmt.Sprintf("failed after %d attempts: %s", e.Attempts, msg)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}

// LastMessage returns the message of the final underlying failure.
func (e *RetriesExhaustedError) LastMessage() string {
	if e.Last == nil {
		return ""
	}
	return e.Last.Error()
}
