package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"devstack/internal/config"
	"devstack/internal/controller"
	"devstack/internal/inspector"
	"devstack/internal/probe"
	"devstack/internal/runner"
	"devstack/internal/service"
	"devstack/internal/state"
	"devstack/pkg/logging"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnknownService is returned for a service type the orchestrator does not manage.
	ErrUnknownService = errors.New("unknown service")
	// ErrNotRunning is wrapped by BackendConfig when the backend is down.
	ErrNotRunning = errors.New("not running")
	// ErrRuntimeNotReady is returned by StartAllInOrder when the runtime was
	// started but never reported Running within the configured wait.
	ErrRuntimeNotReady = errors.New("container runtime did not become ready")
)

// managed bundles a service with the components acting on it.
type managed struct {
	svc        *service.ManagedService
	inspector  inspector.Inspector
	controller *controller.Controller
}

// Orchestrator coordinates the container runtime and the backend stack.
type Orchestrator struct {
	cfg     config.DevstackConfig
	store   *state.Store
	runtime *managed
	backend *managed

	backendInspector *inspector.BackendInspector

	checks singleflight.Group
}

// Dependencies are the side-effecting collaborators. Zero values are
// replaced with the production implementations.
type Dependencies struct {
	Runner   runner.Runner
	Prober   inspector.Prober
	Platform controller.Platform
	Store    *state.Store
}

// New wires inspectors and controllers for both services from cfg.
// No external command runs until an operation is called.
func New(cfg config.DevstackConfig, deps Dependencies) *Orchestrator {
	if deps.Runner == nil {
		deps.Runner = runner.NewExecRunner()
	}
	if deps.Prober == nil {
		deps.Prober = probe.New()
	}
	if deps.Platform == controller.PlatformUnknown {
		deps.Platform = controller.DetectPlatform()
	}
	if deps.Store == nil {
		deps.Store = state.NewStore()
	}

	runtimeSvc := service.NewManagedService(service.TypeRuntime, cfg.Runtime.Name, cfg.Runtime.Executable)
	runtimeInsp := inspector.NewRuntimeInspector(cfg.Runtime, deps.Runner)

	backendSvc := service.NewManagedService(service.TypeBackend, cfg.Backend.Name, cfg.Backend.Executable)
	backendInsp := inspector.NewBackendInspector(cfg.Backend, deps.Runner, deps.Prober)

	logging.Debug("Orchestrator", "Managing %s (%s) and %s (%s) on %s",
		cfg.Runtime.Name, cfg.Runtime.Executable, cfg.Backend.Name, cfg.Backend.Executable, deps.Platform)

	return &Orchestrator{
		cfg:   cfg,
		store: deps.Store,
		runtime: &managed{
			svc:        runtimeSvc,
			inspector:  runtimeInsp,
			controller: controller.NewRuntime(runtimeSvc, cfg.Runtime, runtimeInsp, deps.Runner, deps.Platform),
		},
		backend: &managed{
			svc:        backendSvc,
			inspector:  backendInsp,
			controller: controller.NewBackend(backendSvc, cfg.Backend, backendInsp, deps.Runner, deps.Prober, deps.Platform),
		},
		backendInspector: backendInsp,
	}
}

// Store returns the state store operations publish to.
func (o *Orchestrator) Store() *state.Store { return o.store }

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() config.DevstackConfig { return o.cfg }

// Service returns the managed service of the given type.
func (o *Orchestrator) Service(typ service.Type) (*service.ManagedService, error) {
	m, err := o.lookup(typ)
	if err != nil {
		return nil, err
	}
	return m.svc, nil
}

// Services returns both managed services, runtime first.
func (o *Orchestrator) Services() []*service.ManagedService {
	return []*service.ManagedService{o.runtime.svc, o.backend.svc}
}

func (o *Orchestrator) lookup(typ service.Type) (*managed, error) {
	switch typ {
	case service.TypeRuntime:
		return o.runtime, nil
	case service.TypeBackend:
		return o.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, typ)
	}
}

// publish mirrors the managed service's current status into the store.
func (o *Orchestrator) publish(m *managed, op, corrID string, err error) {
	status, _ := m.svc.Status()
	o.store.Set(state.Update{
		Service:          m.svc.Type(),
		Name:             m.svc.Name(),
		Status:           status,
		InstalledVersion: m.svc.InstalledVersion(),
		Operation:        op,
		Err:              err,
		CorrelationID:    corrID,
	})
}

// Check inspects one service and records the result. Concurrent calls for the
// same service share a single inspection. The shared inspection is detached
// from any one caller's cancellation and bounded by the command and probe
// timeouts; a caller whose ctx ends first gets ctx.Err().
func (o *Orchestrator) Check(ctx context.Context, typ service.Type) (service.Status, error) {
	m, err := o.lookup(typ)
	if err != nil {
		return service.Status{}, err
	}
	inspectCtx := context.WithoutCancel(ctx)
	ch := o.checks.DoChan(string(typ), func() (interface{}, error) {
		status := m.inspector.Inspect(inspectCtx)
		m.svc.Record(status)
		o.publish(m, "check", "", nil)
		return status, nil
	})
	select {
	case res := <-ch:
		return res.Val.(service.Status), nil
	case <-ctx.Done():
		return service.Status{}, ctx.Err()
	}
}

// VersionCheck reports whether the service's CLI is installed and records
// the version.
func (o *Orchestrator) VersionCheck(ctx context.Context, typ service.Type) (service.Installation, error) {
	m, err := o.lookup(typ)
	if err != nil {
		return service.Installation{}, err
	}
	inst := m.inspector.VersionCheck(ctx)
	m.svc.RecordInstallation(inst)
	o.publish(m, "version", "", nil)
	return inst, nil
}

// BackendConfig returns the backend's raw status JSON. It fails with
// "<name> is not running" when the status query fails.
func (o *Orchestrator) BackendConfig(ctx context.Context) (string, error) {
	raw, ok := o.backendInspector.Config(ctx)
	if !ok {
		return "", fmt.Errorf("%s is %w", o.cfg.Backend.Name, ErrNotRunning)
	}
	return raw, nil
}

// VerifyBackendReady checks that the backend schema has been migrated.
func (o *Orchestrator) VerifyBackendReady(ctx context.Context) (controller.Readiness, error) {
	r, err := o.backend.controller.VerifyReady(ctx)
	o.publish(o.backend, "verify", "", err)
	return r, err
}
