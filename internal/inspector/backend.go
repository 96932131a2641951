package inspector

import (
	"context"
	"net/http"
	"strings"
	"time"

	"devstack/internal/config"
	"devstack/internal/probe"
	"devstack/internal/runner"
	"devstack/internal/service"
	"devstack/pkg/logging"
)

// maxHealthTimeout caps the network tier so a check stays interactive.
const maxHealthTimeout = 2 * time.Second

// BackendInspector classifies the backend stack. The network probe is tried
// first because the CLI status query only works from inside the project
// directory, which callers do not guarantee.
type BackendInspector struct {
	cfg    config.BackendConfig
	runner runner.Runner
	prober Prober
}

// NewBackendInspector creates an inspector for the backend stack.
func NewBackendInspector(cfg config.BackendConfig, r runner.Runner, p Prober) *BackendInspector {
	return &BackendInspector{cfg: cfg, runner: r, prober: p}
}

// Inspect runs the two-tier check:
//  1. probe the REST health endpoint; 200 means Running, enriched with the
//     CLI status JSON when that succeeds and empty details when it does not.
//  2. otherwise the CLI status query decides Running or Stopped. When the
//     probe got an HTTP answer other than 200 and the CLI also fails, the
//     service is Unreachable: something listens but is not usable.
func (i *BackendInspector) Inspect(ctx context.Context) service.Status {
	status := i.inspect(ctx)
	recordUp(service.TypeBackend, status)
	return status
}

func (i *BackendInspector) inspect(ctx context.Context) service.Status {
	res := i.prober.Probe(ctx, probe.Request{
		URL:     i.cfg.HealthURL(),
		Timeout: i.healthTimeout(),
		Headers: i.cfg.AuthHeaders(),
	})

	if res.Reachable && res.StatusCode == http.StatusOK {
		out := i.status(ctx)
		if out.Success {
			return service.Running(strings.TrimSpace(out.Stdout))
		}
		logging.Debug("BackendInspector", "%s reachable but status enrichment failed: %s", i.cfg.Name, out.Diagnostic())
		return service.Running("")
	}
	logging.Debug("BackendInspector", "Health probe did not confirm %s (status %d): %s; falling back to CLI", i.cfg.Name, res.StatusCode, res.Diagnostic)

	out := i.status(ctx)
	if out.Success {
		return service.Running(strings.TrimSpace(out.Stdout))
	}
	logging.Debug("BackendInspector", "%s status query failed: %s", i.cfg.Name, out.Diagnostic())
	if res.Answered() {
		return service.Unreachable()
	}
	return service.Stopped()
}

// Config returns the raw status JSON from the CLI, or ok=false when the
// status query fails.
func (i *BackendInspector) Config(ctx context.Context) (string, bool) {
	out := i.status(ctx)
	if !out.Success {
		return "", false
	}
	return out.Stdout, true
}

// VersionCheck runs `<backend> --version`.
func (i *BackendInspector) VersionCheck(ctx context.Context) service.Installation {
	return versionCheck(ctx, i.runner, i.cfg.ServiceConfig, "BackendInspector")
}

func (i *BackendInspector) status(ctx context.Context) runner.Outcome {
	return i.runner.Run(ctx, runner.Command{
		Name:    i.cfg.Executable,
		Args:    i.cfg.Status.Args,
		Dir:     i.cfg.ProjectDir,
		Timeout: i.cfg.Status.Timeout,
	})
}

func (i *BackendInspector) healthTimeout() time.Duration {
	t := i.cfg.HealthTimeout
	if t <= 0 || t > maxHealthTimeout {
		return maxHealthTimeout
	}
	return t
}
