package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"devstack/internal/api"
	"devstack/internal/color"
	"devstack/internal/orchestrator"
	"devstack/internal/service"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

var statusOutputFormat string

// detailsWidth is the widest the DETAILS column gets, in terminal cells.
const detailsWidth = 48

// statusCmd checks both services and shows installation and run state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether Docker and Supabase are installed and running",
	Long: `Check the container runtime and the backend stack concurrently and
print one row per service.

Output formats:
  table  - styled table (default on a terminal)
  json   - the boundary strings per service (default when piped)`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

type statusRow struct {
	Service    string `json:"service"`
	Name       string `json:"name"`
	Executable string `json:"executable"`
	Installed  string `json:"installed"`
	Status     string `json:"status"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	inst := env.orch.VersionCheckAll(ctx)
	rep := env.orch.CheckAll(ctx)

	rows := []struct {
		svc    *service.ManagedService
		inst   service.Installation
		status service.Status
	}{
		{mustService(env.orch, service.TypeRuntime), inst.Runtime, rep.Runtime},
		{mustService(env.orch, service.TypeBackend), inst.Backend, rep.Backend},
	}

	out := cmd.OutOrStdout()
	format := statusOutputFormat
	if format == "" {
		format = "json"
		if isTerminal(out) {
			format = "table"
		}
	}

	switch format {
	case "json":
		var data []statusRow
		for _, r := range rows {
			data = append(data, statusRow{
				Service:    string(r.svc.Type()),
				Name:       r.svc.Name(),
				Executable: r.svc.Executable(),
				Installed:  api.EncodeInstallation(r.inst),
				Status:     api.EncodeStatus(r.status),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "table":
		var table [][]string
		for _, r := range rows {
			version := "-"
			if r.inst.Installed {
				version = r.inst.Version
			}
			table = append(table, []string{
				r.svc.Name(),
				version,
				color.Status(r.status.Kind),
				summarize(r.status),
			})
		}
		fmt.Fprintln(out, color.Table([]string{"SERVICE", "VERSION", "STATUS", "DETAILS"}, table))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table or json)", statusOutputFormat)
	}
}

// summarize keeps the details column to one short line; the backend's
// details are a whole JSON document.
func summarize(s service.Status) string {
	text := s.Details
	if s.Kind == service.KindStartFailed {
		text = s.Reason
	}
	return ansi.Truncate(strings.Join(strings.Fields(text), " "), detailsWidth, "...")
}

func mustService(o *orchestrator.Orchestrator, typ service.Type) *service.ManagedService {
	svc, err := o.Service(typ)
	if err != nil {
		panic(err)
	}
	return svc
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "", "Output format: table or json (default: table on a terminal, json otherwise)")
}
