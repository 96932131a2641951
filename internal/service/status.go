package service

import "fmt"

// StatusKind is the closed set of lifecycle classifications for a managed service.
type StatusKind int

const (
	KindNotInstalled StatusKind = iota
	KindStopped
	KindAlreadyRunning
	KindStarting
	KindRunning
	KindStartFailed
	KindUnreachable
)

// String returns the classification name.
func (k StatusKind) String() string {
	switch k {
	case KindNotInstalled:
		return "NotInstalled"
	case KindStopped:
		return "Stopped"
	case KindAlreadyRunning:
		return "AlreadyRunning"
	case KindStarting:
		return "Starting"
	case KindRunning:
		return "Running"
	case KindStartFailed:
		return "StartFailed"
	case KindUnreachable:
		return "Unreachable"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// Status is a tagged lifecycle value. Details carries the payload of Running
// (version or status JSON); Reason carries the diagnostic of StartFailed.
type Status struct {
	Kind    StatusKind
	Details string
	Reason  string
}

// NotInstalled means the service executable was not found.
func NotInstalled() Status { return Status{Kind: KindNotInstalled} }

// Stopped means the service is installed but not serving.
func Stopped() Status { return Status{Kind: KindStopped} }

// AlreadyRunning is the start outcome when the service was up before the call.
func AlreadyRunning() Status { return Status{Kind: KindAlreadyRunning} }

// Starting marks a start in progress.
func Starting() Status { return Status{Kind: KindStarting} }

// Running carries the version or status payload reported by the service.
func Running(details string) Status { return Status{Kind: KindRunning, Details: details} }

// StartFailed carries the diagnostic of the last failed start.
func StartFailed(reason string) Status { return Status{Kind: KindStartFailed, Reason: reason} }

// Unreachable means the service answered on its port but could not be confirmed healthy.
func Unreachable() Status { return Status{Kind: KindUnreachable} }

// IsRunning reports whether the service was confirmed up.
func (s Status) IsRunning() bool {
	return s.Kind == KindRunning || s.Kind == KindAlreadyRunning
}

func (s Status) String() string {
	switch {
	case s.Kind == KindStartFailed && s.Reason != "":
		return fmt.Sprintf("%s(%s)", s.Kind, s.Reason)
	case s.Kind == KindRunning && s.Details != "":
		return fmt.Sprintf("%s(%s)", s.Kind, s.Details)
	default:
		return s.Kind.String()
	}
}
