package api

import (
	"context"
	"encoding/json"
	"fmt"

	"devstack/internal/controller"
	"devstack/internal/orchestrator"
	"devstack/internal/service"
	"devstack/pkg/logging"
)

// Orchestrator is the subset of *orchestrator.Orchestrator the API calls.
type Orchestrator interface {
	Check(ctx context.Context, typ service.Type) (service.Status, error)
	CheckAll(ctx context.Context) orchestrator.Report
	VersionCheck(ctx context.Context, typ service.Type) (service.Installation, error)
	Start(ctx context.Context, typ service.Type) (service.Status, error)
	StartAllInOrder(ctx context.Context) (orchestrator.StartAllResult, error)
	Stop(ctx context.Context, typ service.Type, force bool) error
	BackendConfig(ctx context.Context) (string, error)
	VerifyBackendReady(ctx context.Context) (controller.Readiness, error)
	CleanupOnExit(ctx context.Context, stopBackend bool)
	Service(typ service.Type) (*service.ManagedService, error)
}

var _ Orchestrator = (*orchestrator.Orchestrator)(nil)

// API exposes every lifecycle operation as a call returning the boundary
// string on success and an error whose message is shown to the user on
// failure.
type API struct {
	orch Orchestrator
}

// New creates the API over orch.
func New(orch Orchestrator) *API {
	return &API{orch: orch}
}

// CheckRuntimeStatus returns "running:<version>" or "not_running".
func (a *API) CheckRuntimeStatus(ctx context.Context) (string, error) {
	return a.checkStatus(ctx, service.TypeRuntime)
}

// CheckRuntimeInstalled returns "installed:<version>" or "not_installed".
func (a *API) CheckRuntimeInstalled(ctx context.Context) (string, error) {
	return a.checkInstalled(ctx, service.TypeRuntime)
}

// StartRuntime returns "started" or "already_running".
func (a *API) StartRuntime(ctx context.Context) (string, error) {
	return a.start(ctx, service.TypeRuntime)
}

// StopRuntime returns "stopped".
func (a *API) StopRuntime(ctx context.Context, force bool) (string, error) {
	return a.stop(ctx, service.TypeRuntime, force)
}

// CheckBackendStatus returns "running:<status-json>" (the JSON may be empty)
// or "not_running".
func (a *API) CheckBackendStatus(ctx context.Context) (string, error) {
	return a.checkStatus(ctx, service.TypeBackend)
}

// CheckBackendInstalled returns "installed:<version>" or "not_installed".
func (a *API) CheckBackendInstalled(ctx context.Context) (string, error) {
	return a.checkInstalled(ctx, service.TypeBackend)
}

// StartBackend returns "started" or "already_running".
func (a *API) StartBackend(ctx context.Context) (string, error) {
	return a.start(ctx, service.TypeBackend)
}

// StopBackend returns "stopped".
func (a *API) StopBackend(ctx context.Context, force bool) (string, error) {
	return a.stop(ctx, service.TypeBackend, force)
}

// GetBackendConfig returns the backend's raw status JSON.
func (a *API) GetBackendConfig(ctx context.Context) (string, error) {
	return a.orch.BackendConfig(ctx)
}

// VerifyBackendReady returns "migrations_complete" or "no_migrations_needed".
// The error message names the command that fixes the schema.
func (a *API) VerifyBackendReady(ctx context.Context) (string, error) {
	r, err := a.orch.VerifyBackendReady(ctx)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// Cleanup always returns "cleanup_complete".
func (a *API) Cleanup(ctx context.Context, stopBackend bool) string {
	a.orch.CleanupOnExit(ctx, stopBackend)
	return CleanupComplete
}

// CheckAll returns a JSON object of both services' status strings, e.g.
// {"runtime":"running:27.0.3","backend":"not_running"}.
func (a *API) CheckAll(ctx context.Context) (string, error) {
	rep := a.orch.CheckAll(ctx)
	return encodePair(EncodeStatus(rep.Runtime), EncodeStatus(rep.Backend))
}

// StartAll starts the runtime and then the backend, returning a JSON object
// of the start results: {"runtime":"started","backend":"started"}.
func (a *API) StartAll(ctx context.Context) (string, error) {
	res, err := a.orch.StartAllInOrder(ctx)
	if err != nil {
		return "", err
	}
	return encodePair(EncodeStart(res.Runtime), EncodeStart(res.Backend))
}

func (a *API) checkStatus(ctx context.Context, typ service.Type) (string, error) {
	status, err := a.orch.Check(ctx, typ)
	if err != nil {
		return "", err
	}
	if status.Kind == service.KindUnreachable {
		return "", fmt.Errorf("%s: %w", a.name(typ), ErrUnreachable)
	}
	return EncodeStatus(status), nil
}

func (a *API) checkInstalled(ctx context.Context, typ service.Type) (string, error) {
	inst, err := a.orch.VersionCheck(ctx, typ)
	if err != nil {
		return "", err
	}
	return EncodeInstallation(inst), nil
}

func (a *API) start(ctx context.Context, typ service.Type) (string, error) {
	status, err := a.orch.Start(ctx, typ)
	if err != nil {
		return "", err
	}
	return EncodeStart(status), nil
}

func (a *API) stop(ctx context.Context, typ service.Type, force bool) (string, error) {
	if err := a.orch.Stop(ctx, typ, force); err != nil {
		return "", err
	}
	return Stopped, nil
}

func (a *API) name(typ service.Type) string {
	svc, err := a.orch.Service(typ)
	if err != nil {
		return string(typ)
	}
	return svc.Name()
}

func encodePair(runtime, backend string) (string, error) {
	data, err := json.Marshal(map[string]string{
		string(service.TypeRuntime): runtime,
		string(service.TypeBackend): backend,
	})
	if err != nil {
		logging.Error("API", err, "Encoding service pair")
		return "", err
	}
	return string(data), nil
}
