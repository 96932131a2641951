package cmd

import (
	"fmt"
	"io"
	"os"

	"devstack/internal/api"
	"devstack/internal/color"
	"devstack/internal/config"
	"devstack/internal/controller"
	"devstack/internal/orchestrator"
	"devstack/internal/runner"
	"devstack/pkg/logging"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// configPath points at a single config file or directory. When empty the
	// layered default/user/project lookup applies.
	configPath string
	debug      bool
)

// For swapping in a scripted runner in tests
var newRunner = func() runner.Runner { return runner.NewExecRunner() }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devstack",
	Short: "Start, stop and check your local Docker and Supabase stack",
	Long: `devstack manages the two services a local app development setup
depends on: the Docker Desktop container runtime and the Supabase local
stack. It detects whether each is installed and running, starts them in the
right order with platform-specific fallbacks, and verifies that the database
schema has been migrated.

The same operations are available to an embedding application over MCP
with 'devstack serve'.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. a service that failed to start)
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initCLILogging(cmd.ErrOrStderr(), "")
		color.Initialize(lipgloss.HasDarkBackground())
		return nil
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "devstack version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file or directory (default: layered ~/.config/devstack and ./.devstack)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}

func initCLILogging(w io.Writer, configured string) {
	level := logging.LevelWarn
	if configured != "" {
		level = logging.ParseLevel(configured)
	}
	if debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, w)
}

func loadConfig() (config.DevstackConfig, error) {
	if configPath != "" {
		return config.LoadConfigFromPath(configPath)
	}
	return config.LoadConfig()
}

// environment is what every lifecycle command works with.
type environment struct {
	cfg  config.DevstackConfig
	orch *orchestrator.Orchestrator
	api  *api.API
}

func newEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// The configured level applies unless --debug overrides it.
	initCLILogging(cmd.ErrOrStderr(), cfg.LogLevel)

	orch := orchestrator.New(cfg, orchestrator.Dependencies{
		Runner:   newRunner(),
		Platform: controller.DetectPlatform(),
	})
	return &environment{cfg: cfg, orch: orch, api: api.New(orch)}, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
