// Package errs provides structured error types for spinup with
// machine-readable codes and process exit code mapping.
package errs

import "fmt"

// Error is the unified error type for bootstrap failures.
type Error struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic retryable detection.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// UnsupportedOS creates an error for a host OS spinup cannot provision.
func UnsupportedOS(id, version string) *Error {
	return New(CodeUnsupportedOS,
		fmt.Sprintf("Unsupported operating system %q %s. spinup supports Ubuntu 14.04+ and Debian 8+.", id, version)).
		WithDetail("os", id).
		WithDetail("version", version)
}

// UnsupportedProvider creates an error for a cloud provider outside the known set.
func UnsupportedProvider(provider string) *Error {
	return New(CodeUnsupportedProvider,
		fmt.Sprintf("Unsupported cloud provider %q. Expected one of: amazon, google, none.", provider)).
		WithDetail("provider", provider)
}

// Provisioning creates an error for a failed package installation.
func Provisioning(pkg string, cause error) *Error {
	return New(CodeProvisioning, fmt.Sprintf("Failed to install package %q.", pkg)).
		WithDetail("package", pkg).
		WithCause(cause)
}

// StepExhausted creates an error for an initialization step whose retry
// budget ran out.
func StepExhausted(step string, attempts int, cause error) *Error {
	return New(CodeStepExhausted,
		fmt.Sprintf("Initialization step %q failed after %d attempts.", step, attempts)).
		WithDetail("step", step).
		WithDetail("attempts", attempts).
		WithCause(cause)
}

// ConfigInvalid creates an error for invalid resolved settings.
func ConfigInvalid(cause error) *Error {
	return New(CodeConfigInvalid, "Resolved configuration is invalid.").
		WithCause(cause)
}
