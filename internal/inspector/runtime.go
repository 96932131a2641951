package inspector

import (
	"context"
	"strings"

	"devstack/internal/config"
	"devstack/internal/runner"
	"devstack/internal/service"
	"devstack/pkg/logging"
)

// RuntimeInspector classifies the container runtime through its CLI.
type RuntimeInspector struct {
	cfg    config.ServiceConfig
	runner runner.Runner
}

// NewRuntimeInspector creates an inspector for the container runtime.
func NewRuntimeInspector(cfg config.ServiceConfig, r runner.Runner) *RuntimeInspector {
	return &RuntimeInspector{cfg: cfg, runner: r}
}

// Inspect runs the runtime's info query. A successful run means the daemon
// answered and yields Running with the server version; anything else, including
// a missing executable, is Stopped.
func (i *RuntimeInspector) Inspect(ctx context.Context) service.Status {
	out := i.runner.Run(ctx, runner.Command{
		Name:    i.cfg.Executable,
		Args:    i.cfg.Status.Args,
		Timeout: i.cfg.Status.Timeout,
	})

	var status service.Status
	if out.Success {
		status = service.Running(strings.TrimSpace(out.Stdout))
		logging.Debug("RuntimeInspector", "%s daemon running, server version %q", i.cfg.Name, status.Details)
	} else {
		status = service.Stopped()
		logging.Debug("RuntimeInspector", "%s daemon not running: %s", i.cfg.Name, out.Diagnostic())
	}
	recordUp(service.TypeRuntime, status)
	return status
}

// VersionCheck runs `<runtime> --version`.
func (i *RuntimeInspector) VersionCheck(ctx context.Context) service.Installation {
	return versionCheck(ctx, i.runner, i.cfg, "RuntimeInspector")
}
