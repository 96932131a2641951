// Package color holds the terminal styles used by devstack's CLI output.
//
// Colors are adaptive: each has a light and a dark variant and lipgloss picks
// one from the detected (or forced) background. Setting NO_COLOR disables
// styling entirely.
//
// Lifecycle classifications map onto four styles:
//   - Success: Running, AlreadyRunning
//   - Warning: Starting
//   - Error: StartFailed, Unreachable
//   - Muted: Stopped, NotInstalled
//
// # Usage Example
//
//	color.Initialize(lipgloss.HasDarkBackground())
//	fmt.Println(color.Table(
//	    []string{"SERVICE", "STATUS"},
//	    [][]string{{"Docker", color.Status(service.KindRunning)}},
//	))
package color
