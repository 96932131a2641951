// Package config provides configuration management for devstack.
//
// Configuration is loaded from multiple sources and merged in order, with
// later sources overriding earlier ones:
//
//  1. Default configuration (embedded in the binary): Docker Desktop and the
//     Supabase CLI with their stock commands, ports and timeouts.
//
//  2. User configuration (~/.config/devstack/config.yaml)
//
//  3. Project configuration (./.devstack/config.yaml)
//
// Alternatively a single file can be given with --config, which is layered
// directly over the defaults.
//
// # Configuration Structure
//
//	logLevel: debug
//	runtime:
//	  executable: docker
//	  status:
//	    args: ["info", "--format", "{{.ServerVersion}}"]
//	    timeout: 10s
//	  start:
//	    args: ["desktop", "start"]
//	  fallbacks:
//	    - name: systemd
//	      platform: linux
//	      command: ["systemctl", "--user", "start", "docker-desktop"]
//	backend:
//	  executable: supabase
//	  projectDir: ~/src/my-app
//	  apiURL: http://127.0.0.1:54321
//	  apiKey: ${SUPABASE_ANON_KEY}
//	  readinessTable: profiles
//	orchestrator:
//	  runtimeReadyTimeout: 90s
//	  pollInterval: 2s
//
// Keys that are absent keep their default; lists replace the default list.
// When runtime.fallbacks or backend.fallbacks is set it replaces the built-in
// platform fallback chain for that service.
//
// # Environment Variable Expansion
//
// backend.apiKey and backend.projectDir support ${VAR} expansion. An empty
// projectDir resolves to the current working directory.
package config
