// Package apperrors defines structured error types for the mme1536 driver,
// allowing for a clear distinction between error classes (initialization,
// unsupported operand width, exponent encoding, configuration) and for
// carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Error types that carry a cause implement Unwrap() to support errors.Is()
// and errors.As().
package apperrors
