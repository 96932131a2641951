package service

import (
	"fmt"
	"sync"
	"time"
)

// Type identifies one of the external dependencies devstack manages.
type Type string

const (
	TypeRuntime Type = "runtime"
	TypeBackend Type = "backend"
)

// ParseType accepts the canonical names plus the tool names users tend to type.
func ParseType(s string) (Type, error) {
	switch s {
	case "runtime", "docker":
		return TypeRuntime, nil
	case "backend", "supabase":
		return TypeBackend, nil
	default:
		return "", fmt.Errorf("unknown service %q (expected runtime or backend)", s)
	}
}

// Installation is the result of a version check: either not installed, or
// installed with the reported version string.
type Installation struct {
	Installed bool
	Version   string
}

// ManagedService is one external dependency tracked for the lifetime of the
// process. Status is written only by inspection and control operations.
type ManagedService struct {
	mu sync.RWMutex

	typ        Type
	name       string
	executable string

	installedVersion string
	status           Status
	lastProbed       time.Time
}

// NewManagedService creates a service in the Stopped state. No probe has run yet.
func NewManagedService(typ Type, name, executable string) *ManagedService {
	return &ManagedService{
		typ:        typ,
		name:       name,
		executable: executable,
		status:     Stopped(),
	}
}

func (m *ManagedService) Type() Type         { return m.typ }
func (m *ManagedService) Name() string       { return m.name }
func (m *ManagedService) Executable() string { return m.executable }

// Status returns the last recorded classification and when it was probed.
func (m *ManagedService) Status() (Status, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status, m.lastProbed
}

// InstalledVersion returns the version recorded by the last version check.
func (m *ManagedService) InstalledVersion() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.installedVersion
}

// Record stores a new classification and returns the previous one.
func (m *ManagedService) Record(s Status) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.status
	m.status = s
	m.lastProbed = time.Now()
	return old
}

// RecordInstallation stores the outcome of a version check. A missing tool
// also moves the lifecycle status to NotInstalled.
func (m *ManagedService) RecordInstallation(inst Installation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst.Installed {
		m.installedVersion = inst.Version
		if m.status.Kind == KindNotInstalled {
			m.status = Stopped()
		}
	} else {
		m.installedVersion = ""
		m.status = NotInstalled()
	}
	m.lastProbed = time.Now()
}
