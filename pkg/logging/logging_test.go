package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestInitForCLI_WritesSubsystemAndError(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Error("Runner", errors.New("boom"), "command %s failed", "docker")

	out := buf.String()
	assert.Contains(t, out, "command docker failed")
	assert.Contains(t, out, "subsystem=Runner")
	assert.Contains(t, out, "error=boom")
}

func TestInitForCLI_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Info("Runner", "should not appear")
	assert.Empty(t, buf.String())
}

func TestInitForHost_DeliversEntries(t *testing.T) {
	ch := InitForHost(LevelInfo)
	defer func() {
		CloseHostChannel()
		InitForCLI(LevelInfo, &bytes.Buffer{})
	}()

	Debug("Probe", "filtered")
	Warn("Probe", "backend %s unreachable", "supabase")

	select {
	case entry := <-ch:
		assert.Equal(t, LevelWarn, entry.Level)
		assert.Equal(t, "Probe", entry.Subsystem)
		assert.Equal(t, "backend supabase unreachable", entry.Message)
	case <-time.After(time.Second):
		require.Fail(t, "expected a log entry on the host channel")
	}
}
