// Package errors provides typed error handling for Emissary. Every
// internal failure carries a code so the orchestrator can map it into the
// uniform RunResult shape and telemetry can label it.
package errors

import "fmt"

// ErrorCode classifies Emissary errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid (e.g. an unknown
	// agent role).
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeToolFailure indicates a tool invocation failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeLLMError indicates a completion engine error.
	CodeLLMError ErrorCode = "LLM_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// EmissaryError is a typed error with context for observability. It
// implements the error interface and unwraps its cause.
type EmissaryError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Recoverable bool
}

func (e *EmissaryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *EmissaryError) Unwrap() error { return e.Err }

// New creates an EmissaryError with the given code, message and cause.
func New(code ErrorCode, msg string, cause error) *EmissaryError {
	return &EmissaryError{Code: code, Message: msg, Err: cause}
}

// WithContext attaches a key-value pair. Returns the error for chaining.
func (e *EmissaryError) WithContext(key string, value any) *EmissaryError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithRecoverable marks whether the error can be retried.
func (e *EmissaryError) WithRecoverable(recoverable bool) *EmissaryError {
	e.Recoverable = recoverable
	return e
}

// As converts any error into an EmissaryError, wrapping unknown errors as
// internal. Returns nil for nil.
func As(err error) *EmissaryError {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*EmissaryError); ok {
		return ee
	}
	return New(CodeInternal, "wrapped error", err)
}

// Code extracts the error code, defaulting to CodeInternal.
func Code(err error) ErrorCode {
	if ee, ok := err.(*EmissaryError); ok {
		return ee.Code
	}
	return CodeInternal
}
