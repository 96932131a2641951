package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Fake is a scripted Runner for tests. Responses are keyed by the full
// command line ("docker info --format {{.ServerVersion}}"); a key may also
// be just the executable name to match any arguments. Unscripted commands
// behave as if the executable does not exist.
type Fake struct {
	mu        sync.Mutex
	responses map[string]func(Command) Outcome
	delays    map[string]time.Duration
	calls     []Command
}

// NewFake creates an empty scripted runner.
func NewFake() *Fake {
	return &Fake{
		responses: make(map[string]func(Command) Outcome),
		delays:    make(map[string]time.Duration),
	}
}

// On scripts a fixed outcome for the given command line.
func (f *Fake) On(line string, out Outcome) *Fake {
	return f.OnFunc(line, func(Command) Outcome { return out })
}

// OnFunc scripts a computed outcome for the given command line.
func (f *Fake) OnFunc(line string, fn func(Command) Outcome) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[line] = fn
	return f
}

// Delay makes the given command line block for d (or until ctx/timeout ends).
func (f *Fake) Delay(line string, d time.Duration) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[line] = d
	return f
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, c Command) Outcome {
	line := c.String()

	f.mu.Lock()
	f.calls = append(f.calls, c)
	fn, ok := f.responses[line]
	if !ok {
		fn, ok = f.responses[c.Name]
	}
	delay := f.delays[line]
	f.mu.Unlock()

	if delay > 0 {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		select {
		case <-time.After(delay):
		case <-time.After(timeout):
			return Outcome{ExitCode: -1, Err: &ExecError{Command: line, Err: fmt.Errorf("%w after %s", ErrTimedOut, timeout)}}
		case <-ctx.Done():
			return Outcome{ExitCode: -1, Err: &ExecError{Command: line, Err: ctx.Err()}}
		}
	}

	if !ok {
		return Outcome{ExitCode: -1, Err: &ExecError{Command: line, Err: fmt.Errorf("exec: %q: executable file not found in $PATH", c.Name)}}
	}
	return fn(c)
}

// Calls returns every command run so far, in order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times the exact command line was run.
func (f *Fake) CallCount(line string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.String() == line {
			n++
		}
	}
	return n
}

// CallCountPrefix counts runs whose command line starts with prefix.
func (f *Fake) CallCountPrefix(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c.String(), prefix) {
			n++
		}
	}
	return n
}

// OK is a successful outcome with the given stdout.
func OK(stdout string) Outcome {
	return Outcome{Success: true, Stdout: stdout}
}

// Exit is a completed run with a non-zero exit code.
func Exit(code int, stderr string) Outcome {
	return Outcome{ExitCode: code, Stderr: stderr}
}
