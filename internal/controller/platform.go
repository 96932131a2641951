package controller

import (
	goruntime "runtime"
	"time"

	"devstack/internal/config"
	"devstack/internal/runner"
)

// Platform is the host operating system family, used to pick start fallbacks.
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformDarwin
	PlatformLinux
	PlatformWindows
)

func (p Platform) String() string {
	switch p {
	case PlatformDarwin:
		return "darwin"
	case PlatformLinux:
		return "linux"
	case PlatformWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// DetectPlatform maps runtime.GOOS onto Platform.
func DetectPlatform() Platform {
	return platformFromGOOS(goruntime.GOOS)
}

func platformFromGOOS(goos string) Platform {
	switch goos {
	case "darwin":
		return PlatformDarwin
	case "linux":
		return PlatformLinux
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnknown
	}
}

func (p Platform) matches(name string) bool {
	return name == "any" || name == p.String()
}

// RuntimeFallbacks are the built-in secondary start mechanisms for Docker
// Desktop, one per platform.
func RuntimeFallbacks() []config.FallbackSpec {
	return []config.FallbackSpec{
		{
			Name:     "launchservices",
			Platform: "darwin",
			Command:  []string{"open", "-a", "Docker", "--background"},
			Timeout:  30 * time.Second,
		},
		{
			Name:     "desktop-exe",
			Platform: "windows",
			Command:  []string{"cmd", "/c", "start", "", `C:\Program Files\Docker\Docker\Docker Desktop.exe`},
			Timeout:  30 * time.Second,
		},
		{
			Name:     "systemd-user",
			Platform: "linux",
			Command:  []string{"systemctl", "--user", "start", "docker-desktop"},
			Timeout:  time.Minute,
		},
	}
}

// Strategy is one start mechanism in priority order.
type Strategy struct {
	Name    string
	Command runner.Command
}

// BuildStrategies returns the primary start command followed by the
// fallbacks that apply to p. Configured fallbacks replace builtin entirely.
func BuildStrategies(cfg config.ServiceConfig, dir string, p Platform, builtin []config.FallbackSpec) []Strategy {
	strategies := []Strategy{{
		Name: "primary",
		Command: runner.Command{
			Name:    cfg.Executable,
			Args:    cfg.Start.Args,
			Dir:     dir,
			Timeout: cfg.Start.Timeout,
		},
	}}

	fallbacks := builtin
	if len(cfg.Fallbacks) > 0 {
		fallbacks = cfg.Fallbacks
	}
	for _, fb := range fallbacks {
		if !p.matches(fb.Platform) || len(fb.Command) == 0 {
			continue
		}
		timeout := fb.Timeout
		if timeout <= 0 {
			timeout = cfg.Start.Timeout
		}
		strategies = append(strategies, Strategy{
			Name: fb.Name,
			Command: runner.Command{
				Name:    fb.Command[0],
				Args:    fb.Command[1:],
				Dir:     dir,
				Timeout: timeout,
			},
		})
	}
	return strategies
}
