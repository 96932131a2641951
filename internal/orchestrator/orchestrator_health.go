package orchestrator

import (
	"context"

	"devstack/internal/service"

	"golang.org/x/sync/errgroup"
)

// Report is the status of both services from one CheckAll.
type Report struct {
	Runtime service.Status
	Backend service.Status
}

// CheckAll inspects both services concurrently.
func (o *Orchestrator) CheckAll(ctx context.Context) Report {
	var rep Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := o.Check(gctx, service.TypeRuntime)
		rep.Runtime = s
		return err
	})
	g.Go(func() error {
		s, err := o.Check(gctx, service.TypeBackend)
		rep.Backend = s
		return err
	})
	// Check fails only when ctx ends; the report keeps what completed.
	_ = g.Wait()
	return rep
}

// Installations is the result of version checks on both services.
type Installations struct {
	Runtime service.Installation
	Backend service.Installation
}

// VersionCheckAll runs both version checks concurrently.
func (o *Orchestrator) VersionCheckAll(ctx context.Context) Installations {
	var inst Installations
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		i, err := o.VersionCheck(gctx, service.TypeRuntime)
		inst.Runtime = i
		return err
	})
	g.Go(func() error {
		i, err := o.VersionCheck(gctx, service.TypeBackend)
		inst.Backend = i
		return err
	})
	_ = g.Wait()
	return inst
}
