package errs

import "errors"

// Code represents a machine-readable error code.
type Code string

// Configuration errors (fatal, no retry)
const (
	// CodeUnsupportedOS indicates the host OS is outside the supported set.
	CodeUnsupportedOS Code = "UNSUPPORTED_OS"
	// CodeUnsupportedProvider indicates an unknown cloud provider was requested.
	CodeUnsupportedProvider Code = "UNSUPPORTED_PROVIDER"
	// CodeConfigInvalid indicates resolved settings failed validation.
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Run-time errors
const (
	// CodeProvisioning indicates a package installation failed.
	CodeProvisioning Code = "PROVISIONING_FAILED"
	// CodeStepExhausted indicates an initialization step ran out of retries.
	CodeStepExhausted Code = "STEP_EXHAUSTED"
)

var retryableCodes = map[Code]bool{
	CodeProvisioning: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code Code) bool {
	return retryableCodes[code]
}

// Process exit codes for the spinup CLI.
const (
	// ExitOK is returned on full success.
	ExitOK = 0
	// ExitFailure is returned on unsupported OS/provider, unknown flags,
	// provisioning failure, or an exhausted initialization step.
	ExitFailure = 1
	// ExitHelp is the distinguished code returned after printing usage.
	ExitHelp = 2
)

// ExitCode maps an error to the process exit code the CLI should use.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitFailure
}

// CodeOf extracts the Code from an error chain, or "" when the error
// carries no code.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
