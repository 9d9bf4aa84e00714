package sequencer

import (
	"context"
	"errors"
	"fmt"
)

// ConfigError reports an invalid job parameter. It is always detected
// and returned before any numeric work starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid job configuration: %s: %s", e.Field, e.Reason)
}

// TooLargeError reports a job whose keyframes exceed the configured
// pixel budget. The caller may resubmit with smaller input.
type TooLargeError struct {
	Pixels int64
	Limit  int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("keyframes too large: %d pixels exceeds limit of %d", e.Pixels, e.Limit)
}

// IsConfigError reports whether err is a job validation failure.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsCancelled reports whether err is a cooperative cancellation rather
// than a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
