package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/devstack"
	projectConfigDir = ".devstack"
	configFileName   = "config.yaml"
)

// LoadConfig loads the devstack configuration by layering default, user, and project settings.
func LoadConfig() (DevstackConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if _, statErr := os.Stat(userConfigPath); statErr == nil {
		config, err = mergeConfigFile(config, userConfigPath)
		if err != nil {
			return DevstackConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if _, statErr := os.Stat(projectConfigPath); statErr == nil {
		config, err = mergeConfigFile(config, projectConfigPath)
		if err != nil {
			return DevstackConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
	}

	return finalize(config)
}

// LoadConfigFromPath layers a single explicit config file over the defaults.
// path may be the file itself or a directory containing config.yaml.
func LoadConfigFromPath(path string) (DevstackConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DevstackConfig{}, fmt.Errorf("config path %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, configFileName)
	}

	config, err := mergeConfigFile(GetDefaultConfig(), path)
	if err != nil {
		return DevstackConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return finalize(config)
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// mergeConfigFile decodes the YAML file on top of base. Keys absent from the
// file keep their base values; lists present in the file replace the base list.
func mergeConfigFile(base DevstackConfig, filePath string) (DevstackConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return DevstackConfig{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return base, nil
	}

	merged := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&merged); err != nil {
		return DevstackConfig{}, err
	}
	return merged, nil
}

// finalize expands environment references, resolves the project directory
// and validates the result.
func finalize(cfg DevstackConfig) (DevstackConfig, error) {
	cfg.Backend.APIKey = os.ExpandEnv(cfg.Backend.APIKey)
	cfg.Backend.ProjectDir = os.ExpandEnv(cfg.Backend.ProjectDir)

	if cfg.Backend.ProjectDir == "" {
		wd, err := osGetwd()
		if err != nil {
			return DevstackConfig{}, fmt.Errorf("cannot determine project directory: %w", err)
		}
		cfg.Backend.ProjectDir = wd
	} else if strings.HasPrefix(cfg.Backend.ProjectDir, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return DevstackConfig{}, fmt.Errorf("cannot expand project directory: %w", err)
		}
		cfg.Backend.ProjectDir = filepath.Join(home, cfg.Backend.ProjectDir[2:])
	}

	if err := Validate(cfg); err != nil {
		return DevstackConfig{}, err
	}
	return cfg, nil
}

// Validate checks the fields every component relies on.
func Validate(cfg DevstackConfig) error {
	var errs []error
	services := []struct {
		label string
		svc   ServiceConfig
	}{
		{"runtime", cfg.Runtime},
		{"backend", cfg.Backend.ServiceConfig},
	}
	for _, entry := range services {
		label, svc := entry.label, entry.svc
		if svc.Executable == "" {
			errs = append(errs, fmt.Errorf("%s.executable must be set", label))
		}
		for i, fb := range svc.Fallbacks {
			if len(fb.Command) == 0 {
				errs = append(errs, fmt.Errorf("%s.fallbacks[%d].command must not be empty", label, i))
			}
			switch fb.Platform {
			case "darwin", "linux", "windows", "any":
			default:
				errs = append(errs, fmt.Errorf("%s.fallbacks[%d].platform %q is not one of darwin, linux, windows, any", label, i, fb.Platform))
			}
		}
	}
	if cfg.Backend.APIURL == "" {
		errs = append(errs, errors.New("backend.apiURL must be set"))
	}
	if cfg.Backend.HealthTimeout < 0 || cfg.Orchestrator.PollInterval < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

// HealthURL is the full URL probed to decide whether the backend is running.
func (b BackendConfig) HealthURL() string {
	return joinURL(b.APIURL, b.HealthPath)
}

// ReadinessURL is the data-bearing endpoint for table, probed by readiness
// verification. It asks for at most one row.
func (b BackendConfig) ReadinessURL(table string) string {
	return joinURL(b.APIURL, "/rest/v1/"+url.PathEscape(table)+"?select=*&limit=1")
}

// AuthHeaders are sent with every request to the gateway. Empty when no
// API key is configured.
func (b BackendConfig) AuthHeaders() map[string]string {
	if b.APIKey == "" {
		return nil
	}
	return map[string]string{
		"apikey":        b.APIKey,
		"Authorization": "Bearer " + b.APIKey,
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
