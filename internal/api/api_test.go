package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"devstack/internal/controller"
	"devstack/internal/orchestrator"
	"devstack/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrchestrator struct {
	statuses     map[service.Type]service.Status
	installs     map[service.Type]service.Installation
	startResults map[service.Type]service.Status
	startErr     error
	startAll     orchestrator.StartAllResult
	startAllErr  error
	stopErr      error
	backendCfg   string
	backendErr   error
	readiness    controller.Readiness
	readyErr     error

	stopped      []string
	cleanupCalls []bool
}

func newMock() *mockOrchestrator {
	return &mockOrchestrator{
		statuses:     map[service.Type]service.Status{},
		installs:     map[service.Type]service.Installation{},
		startResults: map[service.Type]service.Status{},
	}
}

func (m *mockOrchestrator) Check(ctx context.Context, typ service.Type) (service.Status, error) {
	if typ != service.TypeRuntime && typ != service.TypeBackend {
		return service.Status{}, orchestrator.ErrUnknownService
	}
	if s, ok := m.statuses[typ]; ok {
		return s, nil
	}
	return service.Stopped(), nil
}

func (m *mockOrchestrator) CheckAll(ctx context.Context) orchestrator.Report {
	rt, _ := m.Check(ctx, service.TypeRuntime)
	be, _ := m.Check(ctx, service.TypeBackend)
	return orchestrator.Report{Runtime: rt, Backend: be}
}

func (m *mockOrchestrator) VersionCheck(ctx context.Context, typ service.Type) (service.Installation, error) {
	return m.installs[typ], nil
}

func (m *mockOrchestrator) Start(ctx context.Context, typ service.Type) (service.Status, error) {
	if m.startErr != nil {
		return service.StartFailed("boom"), m.startErr
	}
	return m.startResults[typ], nil
}

func (m *mockOrchestrator) StartAllInOrder(ctx context.Context) (orchestrator.StartAllResult, error) {
	return m.startAll, m.startAllErr
}

func (m *mockOrchestrator) Stop(ctx context.Context, typ service.Type, force bool) error {
	m.stopped = append(m.stopped, fmt.Sprintf("%s force=%t", typ, force))
	return m.stopErr
}

func (m *mockOrchestrator) BackendConfig(ctx context.Context) (string, error) {
	return m.backendCfg, m.backendErr
}

func (m *mockOrchestrator) VerifyBackendReady(ctx context.Context) (controller.Readiness, error) {
	return m.readiness, m.readyErr
}

func (m *mockOrchestrator) CleanupOnExit(ctx context.Context, stopBackend bool) {
	m.cleanupCalls = append(m.cleanupCalls, stopBackend)
}

func (m *mockOrchestrator) Service(typ service.Type) (*service.ManagedService, error) {
	if typ == service.TypeRuntime {
		return service.NewManagedService(typ, "Docker", "docker"), nil
	}
	return service.NewManagedService(typ, "Supabase", "supabase"), nil
}

func TestEncodeStatus(t *testing.T) {
	tests := []struct {
		status   service.Status
		expected string
	}{
		{service.Running("27.0.3"), "running:27.0.3"},
		{service.Running(""), "running:"},
		{service.Running(`{"API_URL":"http://127.0.0.1:54321"}`), `running:{"API_URL":"http://127.0.0.1:54321"}`},
		{service.AlreadyRunning(), "running:"},
		{service.Stopped(), "not_running"},
		{service.NotInstalled(), "not_running"},
		{service.StartFailed("x"), "not_running"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, EncodeStatus(tt.status), tt.status.String())
	}
}

func TestEncodeInstallationAndStart(t *testing.T) {
	assert.Equal(t, "installed:27.0.3", EncodeInstallation(service.Installation{Installed: true, Version: "27.0.3"}))
	assert.Equal(t, "not_installed", EncodeInstallation(service.Installation{}))
	assert.Equal(t, "already_running", EncodeStart(service.AlreadyRunning()))
	assert.Equal(t, "started", EncodeStart(service.Starting()))
}

func TestReadinessStringsMatchBoundary(t *testing.T) {
	assert.Equal(t, MigrationsComplete, controller.MigrationsComplete.String())
	assert.Equal(t, NoMigrationsNeeded, controller.NoMigrationsNeeded.String())
}

func TestAPI_StatusOperations(t *testing.T) {
	m := newMock()
	m.statuses[service.TypeRuntime] = service.Running("27.0.3")
	m.installs[service.TypeBackend] = service.Installation{Installed: true, Version: "2.20.5"}
	a := New(m)
	ctx := context.Background()

	out, err := a.CheckRuntimeStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "running:27.0.3", out)

	out, err = a.CheckBackendStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "not_running", out)

	out, err = a.CheckRuntimeInstalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, "not_installed", out)

	out, err = a.CheckBackendInstalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, "installed:2.20.5", out)
}

func TestAPI_UnreachableIsAnError(t *testing.T) {
	m := newMock()
	m.statuses[service.TypeBackend] = service.Unreachable()
	_, err := New(m).CheckBackendStatus(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.True(t, strings.HasPrefix(err.Error(), "Supabase: "))
}

func TestAPI_Start(t *testing.T) {
	m := newMock()
	m.startResults[service.TypeRuntime] = service.Starting()
	m.startResults[service.TypeBackend] = service.AlreadyRunning()
	a := New(m)

	out, err := a.StartRuntime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "started", out)

	out, err = a.StartBackend(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "already_running", out)

	m.startErr = &controller.StartError{Service: "Supabase", Reason: "port 54322 already allocated"}
	_, err = a.StartBackend(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to start Supabase: port 54322 already allocated", err.Error())
}

func TestAPI_Stop(t *testing.T) {
	m := newMock()
	a := New(m)

	out, err := a.StopBackend(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "stopped", out)
	out, err = a.StopRuntime(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "stopped", out)
	assert.Equal(t, []string{"backend force=false", "runtime force=true"}, m.stopped)

	m.stopErr = &controller.StopError{Service: "Supabase", Reason: "no such container"}
	_, err = a.StopBackend(context.Background(), false)
	assert.EqualError(t, err, "Failed to stop Supabase: no such container")
}

func TestAPI_BackendConfigAndReadiness(t *testing.T) {
	m := newMock()
	m.backendCfg = `{"ANON_KEY":"k"}`
	m.readiness = controller.NoMigrationsNeeded
	a := New(m)

	out, err := a.GetBackendConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"ANON_KEY":"k"}`, out)

	out, err = a.VerifyBackendReady(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no_migrations_needed", out)

	m.backendErr = fmt.Errorf("Supabase is %w", orchestrator.ErrNotRunning)
	_, err = a.GetBackendConfig(context.Background())
	assert.EqualError(t, err, "Supabase is not running")

	m.readyErr = &controller.ReadinessError{URL: "http://x/rest/v1/notes", Table: "notes", StatusCode: 403, Remediation: "supabase migration up"}
	_, err = a.VerifyBackendReady(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase migration up")
}

func TestAPI_Cleanup(t *testing.T) {
	m := newMock()
	a := New(m)
	assert.Equal(t, "cleanup_complete", a.Cleanup(context.Background(), true))
	assert.Equal(t, "cleanup_complete", a.Cleanup(context.Background(), false))
	assert.Equal(t, []bool{true, false}, m.cleanupCalls)
}

func TestAPI_CheckAllAndStartAll(t *testing.T) {
	m := newMock()
	m.statuses[service.TypeRuntime] = service.Running("27.0.3")
	m.startAll = orchestrator.StartAllResult{Runtime: service.AlreadyRunning(), Backend: service.Starting()}
	a := New(m)

	out, err := a.CheckAll(context.Background())
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"runtime": "running:27.0.3", "backend": "not_running"}, got)

	out, err = a.StartAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"runtime": "already_running", "backend": "started"}, got)

	m.startAllErr = errors.New("container runtime did not become ready")
	_, err = a.StartAll(context.Background())
	assert.Error(t, err)
}

func TestAPI_Call(t *testing.T) {
	m := newMock()
	a := New(m)

	out, err := a.Call(context.Background(), OpStopRuntime, Args{Force: true})
	require.NoError(t, err)
	assert.Equal(t, "stopped", out)
	assert.Equal(t, []string{"runtime force=true"}, m.stopped)

	out, err = a.Call(context.Background(), OpCleanup, Args{StopBackend: true})
	require.NoError(t, err)
	assert.Equal(t, "cleanup_complete", out)

	_, err = a.Call(context.Background(), "restart_everything", Args{})
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestAPI_OperationsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, op := range New(newMock()).Operations() {
		assert.False(t, seen[op.Name], "duplicate operation %s", op.Name)
		seen[op.Name] = true
		assert.NotEmpty(t, op.Description)
	}
	assert.Len(t, seen, 13)
}
