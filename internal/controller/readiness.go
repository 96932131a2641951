package controller

import (
	"context"
	"net/http"
	"strings"

	"devstack/internal/config"
	"devstack/internal/inspector"
	"devstack/internal/probe"
	"devstack/internal/project"
	"devstack/pkg/logging"
)

// Readiness is the successful outcome of VerifyReady.
type Readiness int

const (
	MigrationsComplete Readiness = iota + 1
	NoMigrationsNeeded
)

func (r Readiness) String() string {
	switch r {
	case MigrationsComplete:
		return "migrations_complete"
	case NoMigrationsNeeded:
		return "no_migrations_needed"
	default:
		return "unknown"
	}
}

// readyStatuses are the answers that prove the schema exists. 406 is what
// PostgREST returns for a content negotiation mismatch on an existing table
// and 401 is an auth rejection from a gateway that did route the request.
var readyStatuses = []int{http.StatusOK, http.StatusNotAcceptable, http.StatusUnauthorized}

type readiness struct {
	cfg     config.BackendConfig
	prober  inspector.Prober
	project project.Project
}

func (r *readiness) verify(ctx context.Context) (Readiness, error) {
	migrations, err := r.project.Migrations()
	if err != nil {
		logging.Warn("Readiness", "Cannot list migrations in %s: %v", r.project.Dir, err)
	} else if len(migrations) == 0 {
		logging.Info("Readiness", "No migrations in %s", r.project.Dir)
		return NoMigrationsNeeded, nil
	}

	table, err := r.table()
	if err != nil || table == "" {
		rerr := &ReadinessError{
			URL:         r.cfg.APIURL,
			Diagnostic:  "no readiness table",
			Remediation: r.remediation(),
		}
		if err != nil {
			rerr.Diagnostic = err.Error()
		}
		logging.Warn("Readiness", "%s", rerr.Error())
		return 0, rerr
	}

	url := r.cfg.ReadinessURL(table)
	res := r.prober.Probe(ctx, probe.Request{
		URL:      url,
		Timeout:  r.cfg.ReadinessTimeout,
		Headers:  r.cfg.AuthHeaders(),
		Expected: readyStatuses,
	})
	if res.Reachable {
		logging.Info("Readiness", "Schema ready: %s answered %d", url, res.StatusCode)
		return MigrationsComplete, nil
	}

	rerr := &ReadinessError{
		URL:         url,
		Table:       table,
		StatusCode:  res.StatusCode,
		Diagnostic:  res.Diagnostic,
		Remediation: r.remediation(),
	}
	logging.Warn("Readiness", "%s", rerr.Error())
	return 0, rerr
}

// table is the configured readiness table, or the one the migrations create.
func (r *readiness) table() (string, error) {
	if r.cfg.ReadinessTable != "" {
		return r.cfg.ReadinessTable, nil
	}
	table, err := r.project.ReadinessTable()
	if err != nil {
		return "", err
	}
	if table != "" {
		logging.Debug("Readiness", "Using table %q from the migrations in %s", table, r.project.Dir)
	}
	return table, nil
}

// remediation names the migration command: a linked project pushes to the
// remote database, an unlinked one applies to the local stack.
func (r *readiness) remediation() string {
	args := []string{r.cfg.Executable, "migration", "up"}
	if r.project.IsLinked() {
		args = []string{r.cfg.Executable, "db", "push"}
	}
	return strings.Join(args, " ")
}
