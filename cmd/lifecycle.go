package cmd

import (
	"fmt"

	"devstack/internal/api"
	"devstack/internal/service"

	"github.com/spf13/cobra"
)

var (
	stopForce          bool
	cleanupStopBackend bool
)

// startCmd starts one service or both in order
var startCmd = &cobra.Command{
	Use:   "start [runtime|backend|all]",
	Short: "Start Docker, Supabase, or both in order",
	Long: `Start a managed service unless it is already running.

  runtime  - Docker Desktop (falls back to a platform launcher if the CLI fails)
  backend  - the Supabase local stack (needs a running runtime)
  all      - runtime first, wait until it reports running, then backend (default)

Prints "started" or "already_running" for a single service and a JSON object
for all.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"runtime", "backend", "all", "docker", "supabase"},
	RunE:      runStart,
}

// stopCmd stops one service
var stopCmd = &cobra.Command{
	Use:   "stop <runtime|backend>",
	Short: "Stop Docker or Supabase",
	Long: `Stop a managed service. The stop command runs without a status
pre-check.

With --force the stop does not wait for an in-flight start and passes the
configured force arguments (for Docker Desktop: --force).`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"runtime", "backend", "docker", "supabase"},
	RunE:      runStop,
}

// verifyCmd checks that the database schema has been migrated
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that Supabase migrations have been applied",
	Long: `Query a data-bearing REST endpoint of the backend to confirm the schema
exists. Prints "migrations_complete", or "no_migrations_needed" when the
project has no migration files. On failure the error names the command to run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callOperation(cmd, api.OpVerifyBackendReady, api.Args{})
	},
}

// installedCmd reports tool installation
var installedCmd = &cobra.Command{
	Use:   "installed [runtime|backend]",
	Short: "Report whether the Docker and Supabase CLIs are installed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops := []string{api.OpCheckRuntimeInstalled, api.OpCheckBackendInstalled}
		if len(args) == 1 {
			typ, err := service.ParseType(args[0])
			if err != nil {
				return err
			}
			ops = []string{pick(typ, api.OpCheckRuntimeInstalled, api.OpCheckBackendInstalled)}
		}
		env, err := newEnvironment(cmd)
		if err != nil {
			return err
		}
		for _, op := range ops {
			out, err := env.api.Call(cmd.Context(), op, api.Args{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

// configCmd prints the backend's status JSON
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the running Supabase stack's URLs and keys",
	Long: `Print the JSON reported by the backend CLI's status command: API URL,
database URL, anon and service keys. Fails when the backend is not running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callOperation(cmd, api.OpGetBackendConfig, api.Args{})
	},
}

// cleanupCmd is what a host runs on exit
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Best-effort cleanup before exit",
	Long: `Best-effort cleanup for a host application that is quitting. With
--stop-backend the Supabase stack is stopped; Docker is always left running.
Never fails: problems are logged and "cleanup_complete" is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callOperation(cmd, api.OpCleanup, api.Args{StopBackend: cleanupStopBackend})
	},
}

func runStart(cmd *cobra.Command, args []string) error {
	target := "all"
	if len(args) == 1 {
		target = args[0]
	}
	if target == "all" {
		return callOperation(cmd, api.OpStartAll, api.Args{})
	}
	typ, err := service.ParseType(target)
	if err != nil {
		return err
	}
	return callOperation(cmd, pick(typ, api.OpStartRuntime, api.OpStartBackend), api.Args{})
}

func runStop(cmd *cobra.Command, args []string) error {
	typ, err := service.ParseType(args[0])
	if err != nil {
		return err
	}
	return callOperation(cmd, pick(typ, api.OpStopRuntime, api.OpStopBackend), api.Args{Force: stopForce})
}

// callOperation runs one API operation and prints its boundary string.
func callOperation(cmd *cobra.Command, op string, args api.Args) error {
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	out, err := env.api.Call(cmd.Context(), op, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func pick(typ service.Type, runtimeOp, backendOp string) string {
	if typ == service.TypeRuntime {
		return runtimeOp
	}
	return backendOp
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(installedCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cleanupCmd)

	stopCmd.Flags().BoolVar(&stopForce, "force", false, "Do not wait for an in-flight start; pass force arguments to the stop command")
	cleanupCmd.Flags().BoolVar(&cleanupStopBackend, "stop-backend", false, "Stop the Supabase stack")
}
