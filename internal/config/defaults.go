package config

import (
	"time"
)

// GetDefaultConfig returns the built-in configuration: Docker Desktop as the
// container runtime and the Supabase CLI local stack as the backend.
func GetDefaultConfig() DevstackConfig {
	return DevstackConfig{
		LogLevel: "info",
		Runtime: ServiceConfig{
			Name:       "Docker",
			Executable: "docker",
			Status: CommandSpec{
				Args:    []string{"info", "--format", "{{.ServerVersion}}"},
				Timeout: 10 * time.Second,
			},
			Version: CommandSpec{Args: []string{"--version"}, Timeout: 5 * time.Second},
			Start:   CommandSpec{Args: []string{"desktop", "start"}, Timeout: 2 * time.Minute},
			Stop:    CommandSpec{Args: []string{"desktop", "stop"}, Timeout: time.Minute},
			// Docker Desktop's stop waits for containers unless forced.
			ForceStopArgs: []string{"--force"},
		},
		Backend: BackendConfig{
			ServiceConfig: ServiceConfig{
				Name:       "Supabase",
				Executable: "supabase",
				Status:     CommandSpec{Args: []string{"status", "-o", "json"}, Timeout: 15 * time.Second},
				Version:    CommandSpec{Args: []string{"--version"}, Timeout: 5 * time.Second},
				// First start pulls images; give it room.
				Start: CommandSpec{Args: []string{"start"}, Timeout: 10 * time.Minute},
				Stop:  CommandSpec{Args: []string{"stop"}, Timeout: 2 * time.Minute},
			},
			APIURL:           "http://127.0.0.1:54321",
			HealthPath:       "/rest/v1/",
			HealthTimeout:    2 * time.Second,
			APIKey:           "${SUPABASE_ANON_KEY}",
			ReadinessTimeout: 5 * time.Second,
			MigrationsDir:    "supabase/migrations",
			LinkMarker:       "supabase/.temp/project-ref",
		},
		Orchestrator: OrchestratorConfig{
			RuntimeReadyTimeout: 90 * time.Second,
			PollInterval:        2 * time.Second,
			CleanupTimeout:      30 * time.Second,
		},
	}
}
