package color

import (
	"strings"
	"testing"

	"devstack/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		isDarkMode bool
		expected   bool
	}{
		{"set dark mode", true, true},
		{"set light mode", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Initialize(tt.isDarkMode)
			if lipgloss.HasDarkBackground() != tt.expected {
				t.Errorf("lipgloss.HasDarkBackground() got %v, want %v after Initialize(%v)", lipgloss.HasDarkBackground(), tt.expected, tt.isDarkMode)
			}
		})
	}
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		kind     service.StatusKind
		expected lipgloss.Style
	}{
		{service.KindRunning, SuccessStyle},
		{service.KindAlreadyRunning, SuccessStyle},
		{service.KindStarting, WarnStyle},
		{service.KindStartFailed, ErrorStyle},
		{service.KindUnreachable, ErrorStyle},
		{service.KindStopped, MutedStyle},
		{service.KindNotInstalled, MutedStyle},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected.GetForeground(), StatusStyle(tt.kind).GetForeground(), tt.kind.String())
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"SERVICE", "STATUS"}, [][]string{
		{"Docker", "Running"},
		{"Supabase", "Stopped"},
	})
	assert.Contains(t, out, "SERVICE")
	assert.Contains(t, out, "Docker")
	assert.Contains(t, out, "Supabase")
	assert.Less(t, strings.Index(out, "Docker"), strings.Index(out, "Supabase"), "rows keep their order")
}
