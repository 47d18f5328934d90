package apperrors

import (
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the test
// application. These codes are used to signal the outcome of the program
// execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorDevice   = 2   // Indicates the accelerator could not be opened.
	ExitErrorMismatch = 3   // Indicates a hardware/software result mismatch.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect
// user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InitError represents a failure to bring up the accelerator: a missing
// device node, a denied mmap, or an absent UIO kernel driver. The session
// cannot be used after an InitError; all partially acquired resources have
// already been released when it is returned.
type InitError struct {
	// Stage names the initialization step that failed (e.g. "map data space").
	Stage string
	// Cause is the underlying error reported by the OS.
	Cause error
}

// Error returns a formatted message naming the failed stage and its cause.
func (e InitError) Error() string {
	return fmt.Sprintf("mme1536 init: %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e InitError) Unwrap() error { return e.Cause }

// NewInitError creates an InitError for the given initialization stage.
func NewInitError(stage string, cause error) error {
	return InitError{Stage: stage, Cause: cause}
}

// UnsupportedWidthError reports a modulus or operand bit length that is not
// one of the three pipeline widths the hardware implements. The operation is
// aborted and session state is left unchanged.
type UnsupportedWidthError struct {
	// Bits is the offending bit length.
	Bits int
}

// Error returns a formatted message naming the rejected bit length.
func (e UnsupportedWidthError) Error() string {
	return fmt.Sprintf("unsupported operand length: %d bits (supported: 512, 1024, 1536)", e.Bits)
}

// ExponentLengthError reports an exponent bit length that is not a multiple
// of 32. The exponent FIFO carries whole 32-bit words, so such a stream
// cannot be encoded; the operation is aborted before any register write.
type ExponentLengthError struct {
	// Bits is the offending bit length.
	Bits int
}

// Error returns a formatted message naming the rejected bit length.
func (e ExponentLengthError) Error() string {
	return fmt.Sprintf("exponent length %d is not a multiple of 32", e.Bits)
}

// TimeoutError describes a completion wait that exhausted its budget. The
// driver treats completion timeouts as non-fatal (the hardware keeps
// running); this type exists for callers that want to surface the condition
// in their own reporting.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the wait gave up.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q did not complete within %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}
