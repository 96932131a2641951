package config

import (
	"time"
)

// DevstackConfig is the top-level configuration structure for devstack.
type DevstackConfig struct {
	LogLevel     string             `yaml:"logLevel,omitempty"`
	Runtime      ServiceConfig      `yaml:"runtime"`
	Backend      BackendConfig      `yaml:"backend"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
}

// CommandSpec is the argument list and time ceiling for one CLI invocation.
// The executable comes from the owning ServiceConfig.
type CommandSpec struct {
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// FallbackSpec is a platform-specific start mechanism tried after the
// primary start command fails.
type FallbackSpec struct {
	Name     string        `yaml:"name"`               // Label used in logs and metrics, e.g. "launchservices"
	Platform string        `yaml:"platform"`           // "darwin", "linux", "windows" or "any"
	Command  []string      `yaml:"command"`            // Executable and arguments, e.g. ["open", "-a", "Docker", "--background"]
	Timeout  time.Duration `yaml:"timeout,omitempty"`  // Defaults to the primary start timeout
}

// ServiceConfig describes how to query and control one managed service.
type ServiceConfig struct {
	Name          string         `yaml:"name,omitempty"`          // Display name, e.g. "Docker"
	Executable    string         `yaml:"executable,omitempty"`    // CLI executable, e.g. "docker"
	Status        CommandSpec    `yaml:"status,omitempty"`        // Status query (info/status)
	Version       CommandSpec    `yaml:"version,omitempty"`       // Installed-tool query
	Start         CommandSpec    `yaml:"start,omitempty"`         // Primary start mechanism
	Stop          CommandSpec    `yaml:"stop,omitempty"`          // Stop command
	ForceStopArgs []string       `yaml:"forceStopArgs,omitempty"` // Appended to Stop.Args when stopping with force
	Fallbacks     []FallbackSpec `yaml:"fallbacks,omitempty"`     // Replaces the built-in fallback chain when set
}

// BackendConfig adds the network endpoints and project location of the
// backend stack to its ServiceConfig.
type BackendConfig struct {
	ServiceConfig `yaml:",inline"`

	// ProjectDir is the directory containing the supabase/ project folder.
	// The CLI status, start and stop commands run with this as working directory.
	ProjectDir string `yaml:"projectDir,omitempty"`

	APIURL        string        `yaml:"apiURL,omitempty"`        // Gateway base URL, e.g. http://127.0.0.1:54321
	HealthPath    string        `yaml:"healthPath,omitempty"`    // Probed for "is it running"
	HealthTimeout time.Duration `yaml:"healthTimeout,omitempty"` // At most 2s in practice
	APIKey        string        `yaml:"apiKey,omitempty"`        // Sent as apikey header; supports ${ENV} expansion

	// ReadinessTable is queried to decide whether migrations have been applied.
	// When empty it is derived from the newest migration that creates a table.
	ReadinessTable   string        `yaml:"readinessTable,omitempty"`
	ReadinessTimeout time.Duration `yaml:"readinessTimeout,omitempty"`
	MigrationsDir    string        `yaml:"migrationsDir,omitempty"` // Relative to ProjectDir
	LinkMarker       string        `yaml:"linkMarker,omitempty"`    // Relative to ProjectDir
}

// OrchestratorConfig tunes the cross-service sequencing.
type OrchestratorConfig struct {
	// RuntimeReadyTimeout bounds how long start_all waits for the container
	// runtime to report Running before starting the backend.
	RuntimeReadyTimeout time.Duration `yaml:"runtimeReadyTimeout,omitempty"`
	PollInterval        time.Duration `yaml:"pollInterval,omitempty"`
	// CleanupTimeout bounds the whole best-effort cleanup on exit.
	CleanupTimeout time.Duration `yaml:"cleanupTimeout,omitempty"`
}
