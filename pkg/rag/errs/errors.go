package errs

import (
	"context"
	"errors"
	"fmt"
	"net"

	"aura-support-be/pkg/llm"
)

var (
	// ErrPromptTooLarge is returned when the system instructions and the
	// current user message alone exceed the prompt budget.
	ErrPromptTooLarge = errors.New("prompt too large for context budget")

	// ErrRetrievalMiss marks a retrieval that produced no usable context.
	ErrRetrievalMiss = errors.New("retrieval miss")

	// ErrStorageUnavailable marks a session/knowledge storage read that failed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrGenerationExhausted is returned when every retry attempt failed.
	ErrGenerationExhausted = errors.New("generation retries exhausted")
)

// TransientGenerationError wraps a model failure that is worth retrying
// (network errors, timeouts, rate limits).
type TransientGenerationError struct {
	Cause error
}

func (e *TransientGenerationError) Error() string {
	return fmt.Sprintf("transient generation error: %v", e.Cause)
}

func (e *TransientGenerationError) Unwrap() error {
	return e.Cause
}

// FatalGenerationError wraps a model failure that must not be retried
// (malformed request, authentication failure).
type FatalGenerationError struct {
	Cause error
}

func (e *FatalGenerationError) Error() string {
	return fmt.Sprintf("fatal generation error: %v", e.Cause)
}

func (e *FatalGenerationError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether a generation failure may succeed on retry.
// Unknown errors are considered transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var fatal *FatalGenerationError
	if errors.As(err, &fatal) {
		return false
	}
	var transient *TransientGenerationError
	if errors.As(err, &transient) {
		return true
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return true
}
