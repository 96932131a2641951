package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusKind_String(t *testing.T) {
	tests := []struct {
		kind     StatusKind
		expected string
	}{
		{KindNotInstalled, "NotInstalled"},
		{KindStopped, "Stopped"},
		{KindAlreadyRunning, "AlreadyRunning"},
		{KindStarting, "Starting"},
		{KindRunning, "Running"},
		{KindStartFailed, "StartFailed"},
		{KindUnreachable, "Unreachable"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.kind.String())
	}
}

func TestStatusConstructors(t *testing.T) {
	tests := []struct {
		status Status
		kind   StatusKind
	}{
		{NotInstalled(), KindNotInstalled},
		{Stopped(), KindStopped},
		{AlreadyRunning(), KindAlreadyRunning},
		{Starting(), KindStarting},
		{Running("2.20.5"), KindRunning},
		{StartFailed("port in use"), KindStartFailed},
		{Unreachable(), KindUnreachable},
	}
	for _, test := range tests {
		assert.Equal(t, test.kind, test.status.Kind)
	}
	assert.Equal(t, "2.20.5", Running("2.20.5").Details)
	assert.Equal(t, "port in use", StartFailed("port in use").Reason)
}

func TestStatus_IsRunning(t *testing.T) {
	assert.True(t, Running("27.0.3").IsRunning())
	assert.True(t, AlreadyRunning().IsRunning())
	assert.False(t, Starting().IsRunning())
	assert.False(t, Stopped().IsRunning())
	assert.False(t, Unreachable().IsRunning())
	assert.False(t, StartFailed("nope").IsRunning())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Running(27.0.3)", Running("27.0.3").String())
	assert.Equal(t, "Running", Running("").String())
	assert.Equal(t, "StartFailed(no daemon)", StartFailed("no daemon").String())
	assert.Equal(t, "Stopped", Stopped().String())
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"runtime":  TypeRuntime,
		"docker":   TypeRuntime,
		"backend":  TypeBackend,
		"supabase": TypeBackend,
	} {
		got, err := ParseType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseType("postgres")
	assert.Error(t, err)
}

func TestManagedService_Record(t *testing.T) {
	svc := NewManagedService(TypeRuntime, "Docker", "docker")

	status, probed := svc.Status()
	assert.Equal(t, KindStopped, status.Kind)
	assert.True(t, probed.IsZero())

	old := svc.Record(Running("27.0.3"))
	assert.Equal(t, KindStopped, old.Kind)

	status, probed = svc.Status()
	assert.Equal(t, Running("27.0.3"), status)
	assert.False(t, probed.IsZero())
}

func TestManagedService_RecordInstallation(t *testing.T) {
	svc := NewManagedService(TypeBackend, "Supabase", "supabase")

	svc.RecordInstallation(Installation{Installed: false})
	status, _ := svc.Status()
	assert.Equal(t, KindNotInstalled, status.Kind)
	assert.Empty(t, svc.InstalledVersion())

	svc.RecordInstallation(Installation{Installed: true, Version: "2.20.5"})
	status, _ = svc.Status()
	assert.Equal(t, KindStopped, status.Kind)
	assert.Equal(t, "2.20.5", svc.InstalledVersion())

	svc.Record(Running(""))
	svc.RecordInstallation(Installation{Installed: true, Version: "2.20.5"})
	status, _ = svc.Status()
	assert.Equal(t, KindRunning, status.Kind, "installation check must not downgrade a running service")
}
