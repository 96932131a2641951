package orchestrator

import (
	"context"
	"fmt"
	"time"

	"devstack/internal/service"
	"devstack/internal/state"
	"devstack/pkg/logging"

	"golang.org/x/time/rate"
)

// StartAllResult reports what StartAllInOrder did to each service.
type StartAllResult struct {
	Runtime service.Status
	Backend service.Status
}

// Start starts one service. See controller.Controller.Start.
func (o *Orchestrator) Start(ctx context.Context, typ service.Type) (service.Status, error) {
	m, err := o.lookup(typ)
	if err != nil {
		return service.Status{}, err
	}
	status, err := m.controller.Start(ctx)
	o.publish(m, "start", "", err)
	return status, err
}

// Stop stops one service. With force the stop does not wait for an
// in-flight start and passes the configured force arguments.
func (o *Orchestrator) Stop(ctx context.Context, typ service.Type, force bool) error {
	m, err := o.lookup(typ)
	if err != nil {
		return err
	}
	err = m.controller.Stop(ctx, force)
	o.publish(m, "stop", "", err)
	return err
}

// StartAllInOrder starts the runtime, waits until it reports Running, then
// starts the backend. The backend is never started while the runtime is
// not Running.
func (o *Orchestrator) StartAllInOrder(ctx context.Context) (StartAllResult, error) {
	corrID := state.NewCorrelationID()
	var res StartAllResult

	runtimeStatus, err := o.runtime.controller.Start(ctx)
	o.publish(o.runtime, "start", corrID, err)
	res.Runtime = runtimeStatus
	if err != nil {
		return res, err
	}

	if runtimeStatus.Kind != service.KindAlreadyRunning {
		if err := o.waitForRuntime(ctx, corrID); err != nil {
			return res, err
		}
	}

	backendStatus, err := o.backend.controller.Start(ctx)
	o.publish(o.backend, "start", corrID, err)
	res.Backend = backendStatus
	return res, err
}

// waitForRuntime polls the runtime at the configured interval until it
// reports Running or the ready timeout passes.
func (o *Orchestrator) waitForRuntime(ctx context.Context, corrID string) error {
	timeout := o.cfg.Orchestrator.RuntimeReadyTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	interval := o.cfg.Orchestrator.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	start := time.Now()
	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s not running after %s", ErrRuntimeNotReady, o.runtime.svc.Name(), time.Since(start).Round(time.Millisecond))
		}
		status := o.runtime.inspector.Inspect(ctx)
		if status.Kind == service.KindRunning {
			o.runtime.svc.Record(status)
			o.publish(o.runtime, "check", corrID, nil)
			logging.Info("Orchestrator", "%s ready after %s", o.runtime.svc.Name(), time.Since(start).Round(time.Millisecond))
			return nil
		}
		logging.Debug("Orchestrator", "Waiting for %s: %s", o.runtime.svc.Name(), status)
	}
}

// CleanupOnExit is called when the host application quits. With stopBackend
// it stops the backend stack; the runtime is always left running. Failures
// are logged and never returned.
func (o *Orchestrator) CleanupOnExit(ctx context.Context, stopBackend bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Orchestrator", fmt.Errorf("%v", r), "Cleanup panicked")
		}
	}()

	if !stopBackend {
		logging.Info("Orchestrator", "Cleanup: leaving services running")
		return
	}

	timeout := o.cfg.Orchestrator.CleanupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := o.Stop(ctx, service.TypeBackend, false); err != nil {
		logging.Warn("Orchestrator", "Cleanup: stopping %s failed: %v", o.backend.svc.Name(), err)
		return
	}
	logging.Info("Orchestrator", "Cleanup: %s stopped", o.backend.svc.Name())
}
