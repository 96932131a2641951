// Package controller performs lifecycle actions on one managed service:
// idempotent start with ordered fallbacks, stop, and readiness verification.
package controller

import (
	"context"
	"fmt"

	"devstack/internal/config"
	"devstack/internal/inspector"
	"devstack/internal/metrics"
	"devstack/internal/project"
	"devstack/internal/runner"
	"devstack/internal/service"
	"devstack/pkg/logging"

	"golang.org/x/sync/semaphore"
)

// Controller drives one managed service. Start and non-forced Stop are
// serialized per service; waiting for the slot honours the caller's context.
type Controller struct {
	// sem guards the check-then-act sequence in Start.
	sem *semaphore.Weighted

	svc        *service.ManagedService
	cfg        config.ServiceConfig
	dir        string
	inspector  inspector.Inspector
	runner     runner.Runner
	strategies []Strategy
	readiness  *readiness
}

// NewRuntime creates the controller for the container runtime.
func NewRuntime(svc *service.ManagedService, cfg config.ServiceConfig, insp inspector.Inspector, r runner.Runner, p Platform) *Controller {
	return &Controller{
		sem:        semaphore.NewWeighted(1),
		svc:        svc,
		cfg:        cfg,
		inspector:  insp,
		runner:     r,
		strategies: BuildStrategies(cfg, "", p, RuntimeFallbacks()),
	}
}

// NewBackend creates the controller for the backend stack. Its commands run
// in the project directory and it supports VerifyReady.
func NewBackend(svc *service.ManagedService, cfg config.BackendConfig, insp inspector.Inspector, r runner.Runner, prober inspector.Prober, p Platform) *Controller {
	return &Controller{
		sem:        semaphore.NewWeighted(1),
		svc:        svc,
		cfg:        cfg.ServiceConfig,
		dir:        cfg.ProjectDir,
		inspector:  insp,
		runner:     r,
		strategies: BuildStrategies(cfg.ServiceConfig, cfg.ProjectDir, p, nil),
		readiness: &readiness{
			cfg:     cfg,
			prober:  prober,
			project: project.New(cfg.ProjectDir, cfg.LinkMarker, cfg.MigrationsDir),
		},
	}
}

// Start launches the service unless it is already running. The result is
// AlreadyRunning when the pre-check finds it up (no start command is run),
// Starting when a mechanism exited successfully, or StartFailed with the
// last diagnostic and a *StartError when all of them failed.
//
// Starting only confirms that the launch was accepted; readiness is checked
// separately.
func (c *Controller) Start(ctx context.Context) (service.Status, error) {
	subsystem := "Controller-" + string(c.svc.Type())

	if err := c.sem.Acquire(ctx, 1); err != nil {
		reason := fmt.Sprintf("gave up waiting for another start: %v", err)
		logging.Warn(subsystem, "%s start: %s", c.cfg.Name, reason)
		return service.StartFailed(reason), &StartError{Service: c.cfg.Name, Reason: reason}
	}
	defer c.sem.Release(1)

	if current := c.inspector.Inspect(ctx); current.IsRunning() {
		logging.Info(subsystem, "%s already running", c.cfg.Name)
		status := service.AlreadyRunning()
		c.svc.Record(status)
		return status, nil
	}

	var reason string
	attempts := 0
	for _, s := range c.strategies {
		if ctx.Err() != nil {
			reason = ctx.Err().Error()
			break
		}
		attempts++
		logging.Info(subsystem, "Starting %s via %s: %s", c.cfg.Name, s.Name, s.Command)
		out := c.runner.Run(ctx, s.Command)
		if out.Success {
			metrics.StartAttemptsTotal.WithLabelValues(string(c.svc.Type()), s.Name, "ok").Inc()
			logging.Info(subsystem, "%s start accepted via %s", c.cfg.Name, s.Name)
			status := service.Starting()
			c.svc.Record(status)
			return status, nil
		}
		result := "failed"
		if out.TimedOut() {
			result = "timeout"
		}
		metrics.StartAttemptsTotal.WithLabelValues(string(c.svc.Type()), s.Name, result).Inc()
		reason = out.Diagnostic()
		logging.Warn(subsystem, "%s start via %s failed: %s", c.cfg.Name, s.Name, reason)
	}

	status := service.StartFailed(reason)
	c.svc.Record(status)
	return status, &StartError{Service: c.cfg.Name, Attempts: attempts, Reason: reason}
}

// Stop runs the stop command without a pre-check. With force it appends the
// configured force arguments and does not wait for an in-flight Start.
func (c *Controller) Stop(ctx context.Context, force bool) error {
	subsystem := "Controller-" + string(c.svc.Type())

	if !force {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			reason := fmt.Sprintf("gave up waiting for an in-flight start: %v", err)
			logging.Warn(subsystem, "%s stop: %s", c.cfg.Name, reason)
			return &StopError{Service: c.cfg.Name, Reason: reason}
		}
		defer c.sem.Release(1)
	}

	args := append([]string(nil), c.cfg.Stop.Args...)
	if force {
		args = append(args, c.cfg.ForceStopArgs...)
	}
	cmd := runner.Command{
		Name:    c.cfg.Executable,
		Args:    args,
		Dir:     c.dir,
		Timeout: c.cfg.Stop.Timeout,
	}

	logging.Info(subsystem, "Stopping %s: %s", c.cfg.Name, cmd)
	out := c.runner.Run(ctx, cmd)
	if !out.Success {
		logging.Error(subsystem, out.Err, "%s stop failed: %s", c.cfg.Name, out.Diagnostic())
		return &StopError{Service: c.cfg.Name, Reason: out.Diagnostic()}
	}

	c.svc.Record(service.Stopped())
	return nil
}

// VerifyReady checks that the backend's schema is usable. See readiness.
func (c *Controller) VerifyReady(ctx context.Context) (Readiness, error) {
	if c.readiness == nil {
		return 0, ErrReadinessUnsupported
	}
	return c.readiness.verify(ctx)
}
