package tools

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"devstack/internal/api"
	"devstack/internal/config"
	"devstack/internal/controller"
	"devstack/internal/orchestrator"
	"devstack/internal/runner"
	"devstack/internal/state"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTools(t *testing.T, f *runner.Fake) *APITools {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := config.GetDefaultConfig()
	cfg.Backend.APIURL = "http://" + addr
	cfg.Backend.APIKey = "super-secret"
	cfg.Backend.ProjectDir = t.TempDir()
	cfg.Orchestrator.PollInterval = 10 * time.Millisecond

	store := state.NewStore()
	orch := orchestrator.New(cfg, orchestrator.Dependencies{
		Runner:   f,
		Platform: controller.PlatformLinux,
		Store:    store,
	})
	return NewAPITools(api.New(orch), store, cfg)
}

func call(t *testing.T, at *APITools, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	for _, st := range at.ServerTools() {
		if st.Tool.Name != name {
			continue
		}
		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      name,
				Arguments: args,
			},
		}
		result, err := st.Handler(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, result)
		require.Len(t, result.Content, 1)
		return result
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected TextContent")
	return tc.Text
}

func TestGetAPITools(t *testing.T) {
	at := newTestTools(t, runner.NewFake())
	tools := at.GetAPITools()

	assert.Len(t, tools, 13+2)

	toolNames := make(map[string]mcp.Tool)
	for _, tool := range tools {
		toolNames[tool.Name] = tool
	}
	for _, name := range []string{
		api.OpCheckRuntimeStatus, api.OpCheckRuntimeInstalled, api.OpStartRuntime, api.OpStopRuntime,
		api.OpCheckBackendStatus, api.OpCheckBackendInstalled, api.OpStartBackend, api.OpStopBackend,
		api.OpGetBackendConfig, api.OpVerifyBackendReady, api.OpCleanup, api.OpCheckAll, api.OpStartAll,
		"service_snapshot", "config_get",
	} {
		assert.Contains(t, toolNames, name)
	}

	assert.Contains(t, toolNames[api.OpStopBackend].InputSchema.Properties, "force")
	assert.Contains(t, toolNames[api.OpCleanup].InputSchema.Properties, "stop_backend")
	assert.Contains(t, toolNames["service_snapshot"].InputSchema.Properties, "service")
	assert.NotContains(t, toolNames["service_snapshot"].InputSchema.Required, "service")
}

func TestOperationTools(t *testing.T) {
	f := runner.NewFake().
		On("docker info --format {{.ServerVersion}}", runner.OK("27.0.3\n")).
		On("docker desktop stop --force", runner.OK("")).
		On("supabase --version", runner.OK("2.20.5"))
	at := newTestTools(t, f)

	tests := []struct {
		tool     string
		args     map[string]interface{}
		expected string
	}{
		{api.OpCheckRuntimeStatus, nil, "running:27.0.3"},
		{api.OpCheckBackendStatus, nil, "not_running"},
		{api.OpCheckRuntimeInstalled, nil, "not_installed"},
		{api.OpCheckBackendInstalled, nil, "installed:2.20.5"},
		{api.OpStartRuntime, nil, "already_running"},
		{api.OpStopRuntime, map[string]interface{}{"force": true}, "stopped"},
		{api.OpVerifyBackendReady, nil, "no_migrations_needed"},
		{api.OpCleanup, map[string]interface{}{"stop_backend": false}, "cleanup_complete"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			result := call(t, at, tt.tool, tt.args)
			assert.False(t, result.IsError, text(t, result))
			assert.Equal(t, tt.expected, text(t, result))
		})
	}
}

func TestOperationTools_Errors(t *testing.T) {
	f := runner.NewFake().On("supabase stop", runner.Exit(1, "no containers to stop"))
	at := newTestTools(t, f)

	result := call(t, at, api.OpGetBackendConfig, nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "Supabase is not running", text(t, result))

	result = call(t, at, api.OpStopBackend, nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to stop Supabase: no containers to stop", text(t, result))
}

func TestServiceSnapshotHandler(t *testing.T) {
	f := runner.NewFake().On("docker info --format {{.ServerVersion}}", runner.OK("27.0.3"))
	at := newTestTools(t, f)

	// Unknown service
	result := call(t, at, "service_snapshot", map[string]interface{}{"service": "postgres"})
	assert.True(t, result.IsError)

	// Nothing recorded yet
	result = call(t, at, "service_snapshot", map[string]interface{}{"service": "runtime"})
	assert.True(t, result.IsError)
	result = call(t, at, "service_snapshot", map[string]interface{}{})
	require.False(t, result.IsError, text(t, result))
	assert.Equal(t, "[]", text(t, result))

	call(t, at, api.OpCheckRuntimeStatus, nil)
	result = call(t, at, "service_snapshot", map[string]interface{}{"service": "docker"})
	require.False(t, result.IsError, text(t, result))

	var view map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &view))
	assert.Equal(t, "runtime", view["service"])
	assert.Equal(t, "Running", view["status"])
	assert.Equal(t, "27.0.3", view["details"])
	assert.Equal(t, "check", view["operation"])
	assert.NotEmpty(t, view["correlationId"])

	// Every service, in a fixed order
	call(t, at, api.OpCheckBackendStatus, nil)
	result = call(t, at, "service_snapshot", nil)
	require.False(t, result.IsError, text(t, result))

	var views []map[string]string
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "runtime", views[0]["service"])
	assert.Equal(t, "backend", views[1]["service"])
	assert.Equal(t, "check", views[1]["operation"])
}

func TestConfigGetHandler(t *testing.T) {
	at := newTestTools(t, runner.NewFake())
	result := call(t, at, "config_get", nil)
	require.False(t, result.IsError)

	out := text(t, result)
	assert.Contains(t, out, "executable: docker")
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, "super-secret")
}

func TestNewServer(t *testing.T) {
	at := newTestTools(t, runner.NewFake())
	s := NewServer(at, "1.2.3")
	require.NotNil(t, s)
	sse := NewSSEServer(s, "http://localhost:8090")
	assert.NotNil(t, sse)
}
