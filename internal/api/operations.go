package api

import (
	"context"
	"fmt"
)

// Operation names.
const (
	OpCheckRuntimeStatus    = "check_runtime_status"
	OpCheckRuntimeInstalled = "check_runtime_installed"
	OpStartRuntime          = "start_runtime"
	OpStopRuntime           = "stop_runtime"
	OpCheckBackendStatus    = "check_backend_status"
	OpCheckBackendInstalled = "check_backend_installed"
	OpStartBackend          = "start_backend"
	OpStopBackend           = "stop_backend"
	OpGetBackendConfig      = "get_backend_config"
	OpVerifyBackendReady    = "verify_backend_ready"
	OpCleanup               = "cleanup"
	OpCheckAll              = "check_all"
	OpStartAll              = "start_all"
)

// Args are the optional flags an operation may read.
type Args struct {
	Force       bool // stop_runtime, stop_backend
	StopBackend bool // cleanup
}

// Flag names an Args field for transports that pass named arguments.
type Flag struct {
	Name        string
	Description string
}

var (
	forceFlag       = Flag{Name: "force", Description: "Stop without waiting for an in-flight start"}
	stopBackendFlag = Flag{Name: "stop_backend", Description: "Stop the backend stack before exiting"}
)

// Operation is one named lifecycle call.
type Operation struct {
	Name        string
	Description string
	Flags       []Flag
	Call        func(ctx context.Context, args Args) (string, error)
}

// Operations lists every operation in a stable order.
func (a *API) Operations() []Operation {
	return []Operation{
		{Name: OpCheckRuntimeStatus, Description: "Report whether the container runtime daemon is running",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.CheckRuntimeStatus(ctx) }},
		{Name: OpCheckRuntimeInstalled, Description: "Report whether the container runtime CLI is installed",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.CheckRuntimeInstalled(ctx) }},
		{Name: OpStartRuntime, Description: "Start the container runtime unless it is already running",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.StartRuntime(ctx) }},
		{Name: OpStopRuntime, Description: "Stop the container runtime", Flags: []Flag{forceFlag},
			Call: func(ctx context.Context, args Args) (string, error) { return a.StopRuntime(ctx, args.Force) }},
		{Name: OpCheckBackendStatus, Description: "Report whether the backend stack is running",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.CheckBackendStatus(ctx) }},
		{Name: OpCheckBackendInstalled, Description: "Report whether the backend CLI is installed",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.CheckBackendInstalled(ctx) }},
		{Name: OpStartBackend, Description: "Start the backend stack unless it is already running",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.StartBackend(ctx) }},
		{Name: OpStopBackend, Description: "Stop the backend stack", Flags: []Flag{forceFlag},
			Call: func(ctx context.Context, args Args) (string, error) { return a.StopBackend(ctx, args.Force) }},
		{Name: OpGetBackendConfig, Description: "Return the backend's status JSON (URLs and keys)",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.GetBackendConfig(ctx) }},
		{Name: OpVerifyBackendReady, Description: "Verify the backend schema has been migrated",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.VerifyBackendReady(ctx) }},
		{Name: OpCleanup, Description: "Best-effort cleanup before the host exits", Flags: []Flag{stopBackendFlag},
			Call: func(ctx context.Context, args Args) (string, error) { return a.Cleanup(ctx, args.StopBackend), nil }},
		{Name: OpCheckAll, Description: "Report the status of both services",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.CheckAll(ctx) }},
		{Name: OpStartAll, Description: "Start the container runtime, wait for it, then start the backend",
			Call: func(ctx context.Context, _ Args) (string, error) { return a.StartAll(ctx) }},
	}
}

// Call runs the named operation.
func (a *API) Call(ctx context.Context, name string, args Args) (string, error) {
	for _, op := range a.Operations() {
		if op.Name == name {
			return op.Call(ctx, args)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownOperation, name)
}
