// Package tools exposes devstack's API as MCP tools so an embedding host
// can drive the environment over stdio or SSE.
//
// Every lifecycle operation of package api becomes one tool of the same
// name. Boolean flags (force, stop_backend) become optional boolean
// arguments. A successful call returns the operation's boundary string as
// text content; a failed call returns an error result whose text is the
// user-facing message.
//
// Two introspection tools complement them:
//
//   - service_snapshot: the last recorded state of runtime or backend
//   - config_get: the effective configuration as YAML
//
// Example:
//
//	{
//	  "method": "tools/call",
//	  "params": {
//	    "name": "stop_backend",
//	    "arguments": {"force": true}
//	  }
//	}
//
// Response text: "stopped"
package tools
