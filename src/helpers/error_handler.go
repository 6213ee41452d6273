package helpers

import (
	"context"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ExchangeChatError struct {
	Message string
	Cause   error
}

func (e *ExchangeChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExchangeChatError) Unwrap() error {
	return e.Cause
}

// Helper to define distinct error types for type assertions if needed
type ConfigurationError struct{ ExchangeChatError }
type NetworkError struct{ ExchangeChatError }
type DataSourceError struct{ ExchangeChatError }
type DatabaseError struct{ ExchangeChatError }
type ValidationError struct{ ExchangeChatError }
type CommandError struct{ ExchangeChatError }

// -----------------------------------------------------------------------------

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{ExchangeChatError{Message: message, Cause: cause}}
}

func NewDataSourceError(message string, cause error) *DataSourceError {
	return &DataSourceError{ExchangeChatError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{ExchangeChatError{Message: message, Cause: cause}}
}

func NewCommandError(message string, cause error) *CommandError {
	return &CommandError{ExchangeChatError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries+1 times, sleeping baseDelay*attempt²
// between tries. onRetry, if set, is called before each sleep. It stops early
// when ctx is done.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxRetries int,
	baseDelay time.Duration,
	onRetry func(attempt int, err error),
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(baseDelay * time.Duration(attempt*attempt)):
			}
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("max retries exceeded: %w", lastErr)
}
