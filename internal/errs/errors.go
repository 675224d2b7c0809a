// Package errs defines the error-kind taxonomy shared by every pipeline
// component (§7). Each kind is a distinct Go type so callers can
// discriminate with errors.As instead of string matching or duck typing.
package errs

import (
	"errors"
	"fmt"

	"github.com/oshokin/audio-pipeline/internal/model"
)

// ErrCancelled names the cancellation outcome. The orchestrator does not
// return it: a file left unprocessed by cancellation gets a skipped
// result whose Error text is "Processing cancelled".
var ErrCancelled = errors.New("processing cancelled")

// FileReadError means the on-disk file could not be opened, is not a
// recognisable audio file, or has a corrupt header.
type FileReadError struct {
	FilePath string
	Cause    error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.FilePath, e.Cause)
}

func (e *FileReadError) Unwrap() error { return e.Cause }

// FingerprintError covers a missing fpcalc binary, a subprocess execution
// failure, a parse failure of its output, or exhaustion of AcoustID lookup
// retries.
type FingerprintError struct {
	FilePath string
	Reason   string
	Cause    error
}

func (e *FingerprintError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fingerprint %s: %s: %v", e.FilePath, e.Reason, e.Cause)
	}

	return fmt.Sprintf("fingerprint %s: %s", e.FilePath, e.Reason)
}

func (e *FingerprintError) Unwrap() error { return e.Cause }

// APIError means an external service was unavailable after retries. It
// carries the service name and the last HTTP status observed, so callers
// can decide retryability without inspecting response internals.
type APIError struct {
	Service    string
	StatusCode int
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Cause)
	}

	return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Cause }

// IsRetryable reports whether the HTTP status this error carries warrants a
// retry: 429 and any 5xx, but no other 4xx.
func (e *APIError) IsRetryable() bool {
	if e.StatusCode == 429 {
		return true
	}

	return e.StatusCode >= 500 && e.StatusCode < 600
}

// WriteError means the tag-writer collaborator failed: a codec-level write
// failure, rename-collision exhaustion, an integrity-check failure, or an
// unsupported target format.
type WriteError struct {
	FilePath string
	Reason   string
	Cause    error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("write %s: %s: %v", e.FilePath, e.Reason, e.Cause)
	}

	return fmt.Sprintf("write %s: %s", e.FilePath, e.Reason)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// ValidationError means a settings value was out of range or malformed.
// internal/config does not construct it; its validation returns sentinel
// errors instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StepContext carries the structured fields every log line in §6's format
// expects: filePath, step, cause.
type StepContext struct {
	FilePath string
	Step     model.PipelineStep
	Cause    error
}
