package inspector

import (
	"context"
	"regexp"
	"strings"

	"devstack/internal/config"
	"devstack/internal/metrics"
	"devstack/internal/probe"
	"devstack/internal/runner"
	"devstack/internal/service"
	"devstack/pkg/logging"
)

// Inspector classifies the current state of one managed service.
type Inspector interface {
	// Inspect returns Running, Stopped or Unreachable. It never returns an
	// error: a daemon that is down is a status, not a failure.
	Inspect(ctx context.Context) service.Status
	// VersionCheck reports whether the service's CLI is installed.
	VersionCheck(ctx context.Context) service.Installation
}

// Prober is the probe capability the backend inspector depends on.
type Prober interface {
	Probe(ctx context.Context, req probe.Request) probe.Result
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.\-]+)?)`)

// ParseVersion extracts the first version-looking token from CLI output,
// e.g. "Docker version 27.0.3, build 7d4bcd8" yields "27.0.3". Output without
// such a token is returned as its first trimmed line.
func ParseVersion(output string) string {
	output = strings.TrimSpace(output)
	if m := versionPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	if i := strings.IndexByte(output, '\n'); i >= 0 {
		return strings.TrimSpace(output[:i])
	}
	return output
}

// versionCheck is shared by both services: any failure to run
// `<exe> --version` successfully means the tool is not installed.
func versionCheck(ctx context.Context, r runner.Runner, cfg config.ServiceConfig, subsystem string) service.Installation {
	out := r.Run(ctx, runner.Command{
		Name:    cfg.Executable,
		Args:    cfg.Version.Args,
		Timeout: cfg.Version.Timeout,
	})
	if !out.Success {
		logging.Debug(subsystem, "%s not installed: %s", cfg.Executable, out.Diagnostic())
		return service.Installation{Installed: false}
	}
	version := ParseVersion(out.Stdout)
	logging.Debug(subsystem, "%s installed, version %q", cfg.Executable, version)
	return service.Installation{Installed: true, Version: version}
}

func recordUp(typ service.Type, s service.Status) {
	up := 0.0
	if s.IsRunning() {
		up = 1
	}
	metrics.ServiceUp.WithLabelValues(string(typ)).Set(up)
}
