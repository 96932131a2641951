package api

import "devstack/internal/service"

// Boundary payloads. Hosts match on these literally.
const (
	RunningPrefix      = "running:"
	InstalledPrefix    = "installed:"
	NotRunning         = "not_running"
	NotInstalled       = "not_installed"
	Started            = "started"
	AlreadyRunning     = "already_running"
	Stopped            = "stopped"
	MigrationsComplete = "migrations_complete"
	NoMigrationsNeeded = "no_migrations_needed"
	CleanupComplete    = "cleanup_complete"
)

// EncodeStatus renders a checked status: Running as "running:<details>",
// everything else as "not_running".
func EncodeStatus(s service.Status) string {
	switch s.Kind {
	case service.KindRunning:
		return RunningPrefix + s.Details
	case service.KindAlreadyRunning:
		return RunningPrefix
	default:
		return NotRunning
	}
}

// EncodeStart renders the result of a successful start.
func EncodeStart(s service.Status) string {
	if s.Kind == service.KindAlreadyRunning {
		return AlreadyRunning
	}
	return Started
}

// EncodeInstallation renders a version check.
func EncodeInstallation(i service.Installation) string {
	if !i.Installed {
		return NotInstalled
	}
	return InstalledPrefix + i.Version
}
