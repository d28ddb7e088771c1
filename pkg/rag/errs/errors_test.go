package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"aura-support-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit transient", &TransientGenerationError{Cause: errors.New("reset")}, true},
		{"explicit fatal", &FatalGenerationError{Cause: errors.New("bad key")}, false},
		{"wrapped fatal", fmt.Errorf("call: %w", &FatalGenerationError{Cause: errors.New("x")}), false},
		{"rate limited", &llm.StatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &llm.StatusError{StatusCode: http.StatusBadGateway}, true},
		{"unauthorized", &llm.StatusError{StatusCode: http.StatusUnauthorized}, false},
		{"bad request", fmt.Errorf("ollama: %w", &llm.StatusError{StatusCode: http.StatusBadRequest}), false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"unknown", errors.New("connection reset by peer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
