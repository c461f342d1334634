package videogen

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RemoteKind classifies a failure reported by, or on the way to, a remote
// video generation service.
type RemoteKind string

const (
	// RemoteUnsupported means the interface does not offer the operation
	// (HTTP 404 or 501, or no client available). It is the only kind that
	// triggers the primary to secondary fallback.
	RemoteUnsupported RemoteKind = "unsupported"

	// RemoteNetwork is a transport failure: DNS, connection, TLS, timeout.
	RemoteNetwork RemoteKind = "network"

	// RemoteAuth is an authentication or authorization failure (401/403).
	RemoteAuth RemoteKind = "auth"

	// RemoteRejected means the service refused the parameters (400/422).
	RemoteRejected RemoteKind = "rejected"

	// RemoteRateLimited is HTTP 429.
	RemoteRateLimited RemoteKind = "rate_limited"

	// RemoteServer is a 5xx from the service.
	RemoteServer RemoteKind = "server"

	// RemoteProtocol means the response could not be understood.
	RemoteProtocol RemoteKind = "protocol"
)

// ValidationError reports a bad request. No network call has been made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("videogen: invalid %s: %s", e.Field, e.Message)
}

// ConfigError reports a missing or invalid credential or setting.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "videogen: config: " + e.Message
}

// RemoteError is a failure talking to a generation backend.
type RemoteError struct {
	// Backend is the name of the interface that failed.
	Backend string

	// Kind is the failure class.
	Kind RemoteKind

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Message is the provider's message, if any.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("videogen: %s %s error (status=%d): %s", e.Backend, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("videogen: %s %s error: %s", e.Backend, e.Kind, msg)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed if sent again.
func (e *RemoteError) Retryable() bool {
	switch e.Kind {
	case RemoteNetwork, RemoteRateLimited, RemoteServer:
		return true
	}
	return false
}

// GenerationFailedError means the service accepted the job and later
// reported it as failed.
type GenerationFailedError struct {
	JobID  string
	Reason string
}

func (e *GenerationFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("videogen: job %s failed", e.JobID)
	}
	return fmt.Sprintf("videogen: job %s failed: %s", e.JobID, e.Reason)
}

// TimeoutError means polling gave up before the job reached a terminal
// state. The job may still be running remotely.
type TimeoutError struct {
	JobID      string
	Timeout    time.Duration
	LastStatus JobStatus
	Err        error
}

func (e *TimeoutError) Error() string {
	last := string(e.LastStatus)
	if last == "" {
		last = "unknown"
	}
	return fmt.Sprintf("videogen: job %s not finished after %s (last status %s)", e.JobID, e.Timeout, last)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IOError is a local failure writing the artifact.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("videogen: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AsRemoteError extracts *RemoteError from an error.
//
// Example:
//
//	if e, ok := videogen.AsRemoteError(err); ok && e.Kind == videogen.RemoteAuth {
//	    // Handle bad credentials
//	}
func AsRemoteError(err error) (*RemoteError, bool) {
	var e *RemoteError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsUnsupported reports whether err says the interface does not offer the
// operation.
func IsUnsupported(err error) bool {
	e, ok := AsRemoteError(err)
	return ok && e.Kind == RemoteUnsupported
}

// Error categories returned by Category.
const (
	CategoryValidation = "validation"
	CategoryConfig     = "config"
	CategoryAuth       = "auth"
	CategoryNetwork    = "network"
	CategoryRemote     = "remote"
	CategoryFailed     = "generation_failed"
	CategoryTimeout    = "timeout"
	CategoryIO         = "io"
	CategoryUnknown    = "unknown"
)

// Category names the failure class of err for exit codes, logs and
// metrics. It returns "" for a nil error.
func Category(err error) string {
	if err == nil {
		return ""
	}
	var (
		valErr     *ValidationError
		cfgErr     *ConfigError
		failErr    *GenerationFailedError
		timeoutErr *TimeoutError
		ioErr      *IOError
	)
	switch {
	case errors.As(err, &valErr):
		return CategoryValidation
	case errors.As(err, &cfgErr):
		return CategoryConfig
	case errors.As(err, &failErr):
		return CategoryFailed
	case errors.As(err, &timeoutErr):
		return CategoryTimeout
	case errors.As(err, &ioErr):
		return CategoryIO
	}
	if e, ok := AsRemoteError(err); ok {
		switch e.Kind {
		case RemoteAuth:
			return CategoryAuth
		case RemoteNetwork:
			return CategoryNetwork
		}
		return CategoryRemote
	}
	return CategoryUnknown
}

// kindForStatus maps an HTTP status code to a RemoteKind.
func kindForStatus(status int) RemoteKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return RemoteAuth
	case status == http.StatusNotFound || status == http.StatusNotImplemented:
		return RemoteUnsupported
	case status == http.StatusTooManyRequests:
		return RemoteRateLimited
	case status >= 500:
		return RemoteServer
	case status >= 400:
		return RemoteRejected
	}
	return RemoteProtocol
}
