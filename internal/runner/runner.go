package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"devstack/internal/metrics"
	"devstack/pkg/logging"
)

// DefaultTimeout applies when a Command carries no timeout of its own.
const DefaultTimeout = 30 * time.Second

// ErrTimedOut marks an execution that hit its deadline and was killed.
var ErrTimedOut = errors.New("timed out")

// Command describes one external invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// String renders the command line for logs and diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ExecError is returned when the process could not be spawned or was killed
// on timeout. A command that ran and exited non-zero is not an ExecError.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("failed to run '%s': %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Outcome is the result of one invocation.
type Outcome struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	// Err is non-nil only for execution errors (*ExecError).
	Err error
}

// Diagnostic returns the most useful single line of text describing a
// failed outcome: the execution error, else stderr, else stdout, else the
// exit code.
func (o Outcome) Diagnostic() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	if s := strings.TrimSpace(o.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(o.Stdout); s != "" {
		return s
	}
	return fmt.Sprintf("exit status %d", o.ExitCode)
}

// TimedOut reports whether the outcome is an execution error caused by the deadline.
func (o Outcome) TimedOut() bool {
	return errors.Is(o.Err, ErrTimedOut)
}

// Runner executes external commands. Implementations must be safe for
// concurrent use.
type Runner interface {
	Run(ctx context.Context, cmd Command) Outcome
}

// ExecRunner runs real processes through os/exec.
type ExecRunner struct{}

// NewExecRunner creates the production Runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run spawns the command and waits up to its timeout. The child is killed
// when the deadline passes or ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, c Command) Outcome {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	begin := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	// The caller's deadline may be earlier than the command's own.
	deadline, _ := ctx.Deadline()
	limit := deadline.Sub(begin).Round(time.Millisecond)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	// Grandchildren holding the pipes open must not stall Wait past the deadline.
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("Runner", "Running '%s' (timeout %s)", c, limit)
	start := time.Now()
	runErr := cmd.Run()
	metrics.CommandDuration.WithLabelValues(c.Name).Observe(time.Since(start).Seconds())

	out := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	switch {
	case runErr == nil:
		out.Success = true
		metrics.CommandsTotal.WithLabelValues(c.Name, "ok").Inc()
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		out.ExitCode = -1
		out.Err = &ExecError{Command: c.String(), Err: fmt.Errorf("%w after %s", ErrTimedOut, limit)}
		metrics.CommandsTotal.WithLabelValues(c.Name, "timeout").Inc()
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && ctx.Err() == nil {
			out.ExitCode = exitErr.ExitCode()
			metrics.CommandsTotal.WithLabelValues(c.Name, "exit_error").Inc()
		} else {
			out.ExitCode = -1
			out.Err = &ExecError{Command: c.String(), Err: runErr}
			metrics.CommandsTotal.WithLabelValues(c.Name, "exec_error").Inc()
		}
	}

	if !out.Success {
		logging.Debug("Runner", "'%s' failed: %s", c, out.Diagnostic())
	}
	return out
}
