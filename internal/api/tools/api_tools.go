package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"devstack/internal/api"
	"devstack/internal/config"
	"devstack/internal/service"
	"devstack/internal/state"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

// APITools exposes the lifecycle API, the state store and the effective
// configuration as MCP tools.
type APITools struct {
	api   *api.API
	store *state.Store
	cfg   config.DevstackConfig
}

// NewAPITools creates the tool set.
func NewAPITools(a *api.API, store *state.Store, cfg config.DevstackConfig) *APITools {
	return &APITools{api: a, store: store, cfg: cfg}
}

// GetAPITools returns all tool definitions.
func (at *APITools) GetAPITools() []mcp.Tool {
	var tools []mcp.Tool
	for _, st := range at.ServerTools() {
		tools = append(tools, st.Tool)
	}
	return tools
}

// ServerTools returns every tool paired with its handler, ready for
// server.MCPServer.AddTools.
func (at *APITools) ServerTools() []server.ServerTool {
	var out []server.ServerTool

	// Lifecycle operations, one tool each
	for _, op := range at.api.Operations() {
		opts := []mcp.ToolOption{mcp.WithDescription(op.Description)}
		for _, f := range op.Flags {
			opts = append(opts, mcp.WithBoolean(f.Name, mcp.Description(f.Description)))
		}
		out = append(out, server.ServerTool{
			Tool:    mcp.NewTool(op.Name, opts...),
			Handler: at.operationHandler(op),
		})
	}

	// Introspection
	out = append(out,
		server.ServerTool{
			Tool: mcp.NewTool("service_snapshot",
				mcp.WithDescription("Get the last recorded state of a managed service, or of every service when none is named"),
				mcp.WithString("service",
					mcp.Description("Service to query: runtime or backend (all when omitted)"),
					mcp.Enum("runtime", "backend"),
				),
			),
			Handler: at.HandleServiceSnapshot,
		},
		server.ServerTool{
			Tool: mcp.NewTool("config_get",
				mcp.WithDescription("Get the effective devstack configuration as YAML (API key redacted)"),
			),
			Handler: at.HandleConfigGet,
		},
	)
	return out
}

func (at *APITools) operationHandler(op api.Operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := api.Args{
			Force:       req.GetBool("force", false),
			StopBackend: req.GetBool("stop_backend", false),
		}
		out, err := op.Call(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// snapshotView is the JSON shape of a state.Snapshot.
type snapshotView struct {
	Service          string `json:"service"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	Details          string `json:"details,omitempty"`
	Reason           string `json:"reason,omitempty"`
	InstalledVersion string `json:"installedVersion,omitempty"`
	Operation        string `json:"operation"`
	Error            string `json:"error,omitempty"`
	UpdatedAt        string `json:"updatedAt"`
	CorrelationID    string `json:"correlationId"`
}

// HandleServiceSnapshot handles the service_snapshot tool call
func (at *APITools) HandleServiceSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("service", "")
	if name == "" {
		return at.allSnapshots()
	}
	typ, err := service.ParseType(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snap, ok := at.store.Get(typ)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("No state recorded for %s yet", typ)), nil
	}
	return encodeSnapshots(newSnapshotView(snap))
}

// allSnapshots lists every recorded service in runtime, backend order.
func (at *APITools) allSnapshots() (*mcp.CallToolResult, error) {
	all := at.store.All()
	views := make([]snapshotView, 0, len(all))
	for _, typ := range []service.Type{service.TypeRuntime, service.TypeBackend} {
		if snap, ok := all[typ]; ok {
			views = append(views, newSnapshotView(snap))
		}
	}
	return encodeSnapshots(views)
}

func newSnapshotView(snap state.Snapshot) snapshotView {
	return snapshotView{
		Service:          string(snap.Service),
		Name:             snap.Name,
		Status:           snap.Status.Kind.String(),
		Details:          snap.Status.Details,
		Reason:           snap.Status.Reason,
		InstalledVersion: snap.InstalledVersion,
		Operation:        snap.Operation,
		Error:            snap.Error,
		UpdatedAt:        snap.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		CorrelationID:    snap.CorrelationID,
	}
}

func encodeSnapshots(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode snapshot: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleConfigGet handles the config_get tool call
func (at *APITools) HandleConfigGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := at.cfg
	if cfg.Backend.APIKey != "" {
		cfg.Backend.APIKey = "<redacted>"
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode configuration: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
