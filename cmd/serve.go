package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"devstack/internal/api/tools"
	"devstack/internal/state"
	"devstack/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	serveTransport   string
	serveAddr        string
	serveMetricsAddr string
	serveStopBackend bool
)

// serveCmd exposes every operation to an embedding application over MCP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve devstack operations to a host application over MCP",
	Long: `Run devstack as a long-lived process that a host application (a desktop
shell, an editor, an AI assistant) talks to over the Model Context Protocol.

Transports:
  stdio  - JSON-RPC on stdin/stdout (default)
  sse    - HTTP server-sent events on --addr, endpoints /sse and /message

Every operation is a tool returning the same strings as the CLI commands.
Log entries and service state changes are pushed to connected clients as
notifications. On shutdown a best-effort cleanup runs; with --stop-backend it
stops the Supabase stack.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

const (
	logNotification   = "notifications/message"
	stateNotification = "notifications/devstack/state"
	shutdownTimeout   = 5 * time.Second
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(env.cfg.LogLevel)
	if debug {
		level = logging.LevelDebug
	}
	logs := logging.InitForHost(level)

	at := tools.NewAPITools(env.api, env.orch.Store(), env.cfg)
	mcpServer := tools.NewServer(at, rootCmd.Version)

	logsDone := make(chan struct{})
	go func() {
		defer close(logsDone)
		forwardLogs(mcpServer, logs, cmd.ErrOrStderr())
	}()

	sub := env.orch.Store().Subscribe("")
	go forwardStateChanges(mcpServer, sub)

	var metricsSrv *http.Server
	if serveMetricsAddr != "" {
		metricsSrv = newMetricsServer(serveMetricsAddr)
		go func() {
			logging.Info("Serve", "Metrics listening on %s", serveMetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Serve", err, "Metrics server error")
			}
		}()
	}

	switch serveTransport {
	case "stdio":
		logging.Info("Serve", "Serving MCP on stdio")
		err = server.NewStdioServer(mcpServer).Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	case "sse":
		err = serveSSE(ctx, mcpServer)
	default:
		err = fmt.Errorf("unknown transport %q (expected stdio or sse)", serveTransport)
	}

	// The serve context is already cancelled here; cleanup gets its own.
	env.orch.CleanupOnExit(context.Background(), serveStopBackend)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if serr := metricsSrv.Shutdown(shutdownCtx); serr != nil {
			logging.Warn("Serve", "Error shutting down metrics server: %v", serr)
		}
		cancel()
	}

	env.orch.Store().Unsubscribe(sub)
	logging.Info("Serve", "%s", storeSummary(env.orch.Store().Metrics()))
	logging.CloseHostChannel()
	<-logsDone
	return err
}

func serveSSE(ctx context.Context, s *server.MCPServer) error {
	sse := tools.NewSSEServer(s, "http://"+serveAddr)

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Serve", "Serving MCP over SSE on %s", serveAddr)
		if err := sse.Start(serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("SSE server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		logging.Error("Serve", err, "Error shutting down SSE server")
	}
	return nil
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// forwardLogs drains the host log channel until it is closed. Every entry is
// written to w and sent to connected MCP clients.
func forwardLogs(s *server.MCPServer, logs <-chan logging.LogEntry, w io.Writer) {
	for entry := range logs {
		line := fmt.Sprintf("%s %-5s [%s] %s", entry.Timestamp.Format(time.RFC3339), entry.Level, entry.Subsystem, entry.Message)
		if entry.Err != nil {
			line += ": " + entry.Err.Error()
		}
		fmt.Fprintln(w, line)
		s.SendNotificationToAllClients(logNotification, logParams(entry))
	}
}

func logParams(entry logging.LogEntry) map[string]any {
	data := entry.Message
	if entry.Err != nil {
		data += ": " + entry.Err.Error()
	}
	return map[string]any{
		"level":  strings.ToLower(entry.Level.String()),
		"logger": entry.Subsystem,
		"data":   data,
	}
}

// forwardStateChanges pushes every store change to connected clients until
// the subscription is closed.
func forwardStateChanges(s *server.MCPServer, sub *state.Subscription) {
	for ev := range sub.Events {
		s.SendNotificationToAllClients(stateNotification, stateParams(ev))
	}
}

func stateParams(ev state.ChangeEvent) map[string]any {
	params := map[string]any{
		"service":       string(ev.Service),
		"name":          ev.Snapshot.Name,
		"old":           ev.Old.Kind.String(),
		"new":           ev.New.Kind.String(),
		"operation":     ev.Snapshot.Operation,
		"correlationId": ev.Snapshot.CorrelationID,
	}
	if ev.Snapshot.Error != "" {
		params["error"] = ev.Snapshot.Error
	}
	return params
}

func storeSummary(m state.Metrics) string {
	return fmt.Sprintf("State store: %d services, %d changes, %d events delivered, %d dropped",
		m.Services, m.StateChanges, m.EventsDelivered, m.DroppedEvents)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "MCP transport: stdio or sse")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8090", "Listen address for the sse transport")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (disabled when empty)")
	serveCmd.Flags().BoolVar(&serveStopBackend, "stop-backend", false, "Stop the Supabase stack when serve exits")
}
