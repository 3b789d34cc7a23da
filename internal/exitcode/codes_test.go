package exitcode_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CodexForgeBR/async-demos/internal/exitcode"
	"github.com/CodexForgeBR/async-demos/internal/retry"
)

func TestName(t *testing.T) {
	tests := []struct {
		code int
		name string
	}{
		{exitcode.Success, "Success"},
		{exitcode.Error, "Error"},
		{exitcode.RetriesExhausted, "RetriesExhausted"},
		{exitcode.Interrupted, "Interrupted"},
		{42, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, exitcode.Name(tt.code))
		})
	}
}

func TestFromError(t *testing.T) {
	exhausted := &retry.RetriesExhaustedError{Attempts: 3, Last: errors.New("boom")}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"plain error", errors.New("bad flag"), exitcode.Error},
		{"exhausted", exhausted, exitcode.RetriesExhausted},
		{"wrapped exhausted", fmt.Errorf("fetch users: %w", exhausted), exitcode.RetriesExhausted},
		{"cancelled", fmt.Errorf("wait: %w", context.Canceled), exitcode.Interrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitcode.FromError(tt.err))
		})
	}
}
