package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrStartFailed is matched by every *StartError.
	ErrStartFailed = errors.New("start failed")
	// ErrStopFailed is matched by every *StopError.
	ErrStopFailed = errors.New("stop failed")
	// ErrNotReady is matched by every *ReadinessError.
	ErrNotReady = errors.New("backend not ready")
	// ErrReadinessUnsupported is returned by VerifyReady on a controller
	// without a readiness endpoint.
	ErrReadinessUnsupported = errors.New("readiness verification not supported for this service")
)

// StartError reports that every start mechanism failed. Reason is the
// diagnostic of the last one tried.
type StartError struct {
	Service  string
	Attempts int
	Reason   string
}

func (e *StartError) Error() string {
	return fmt.Sprintf("Failed to start %s: %s", e.Service, e.Reason)
}

func (e *StartError) Unwrap() error { return ErrStartFailed }

// StopError reports a stop command that did not exit successfully.
type StopError struct {
	Service string
	Reason  string
}

func (e *StopError) Error() string {
	return fmt.Sprintf("Failed to stop %s: %s", e.Service, e.Reason)
}

func (e *StopError) Unwrap() error { return ErrStopFailed }

// ReadinessError reports that the backend's data endpoint did not answer
// as migrated. Remediation is the command the user should run.
type ReadinessError struct {
	URL         string
	Table       string // empty when no table could be determined
	StatusCode  int    // 0 when the endpoint was unreachable
	Diagnostic  string
	Remediation string
}

func (e *ReadinessError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("Cannot verify the database schema (%s): set backend.readinessTable or add a migration that creates a table, then run '%s'.", e.Diagnostic, e.Remediation)
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("Backend API at %s is unreachable (%s). Run '%s' once the stack is up.", e.URL, e.Diagnostic, e.Remediation)
	}
	return fmt.Sprintf("Database schema is not ready (HTTP %d from %s). Run '%s' to apply migrations.", e.StatusCode, e.URL, e.Remediation)
}

func (e *ReadinessError) Unwrap() error { return ErrNotReady }
