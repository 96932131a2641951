// Package api is the boundary between devstack and whatever host drives it:
// the CLI, or an embedding application talking MCP over stdio or SSE.
//
// Every operation returns a plain string on success and an error whose
// message is meant for the user on failure. The strings are a stable
// contract and are matched literally by hosts:
//
//	check_runtime_status     running:<version> | not_running
//	check_runtime_installed  installed:<version> | not_installed
//	start_runtime            started | already_running
//	stop_runtime             stopped
//	check_backend_status     running:<status-json> | not_running
//	check_backend_installed  installed:<version> | not_installed
//	start_backend            started | already_running
//	stop_backend             stopped
//	get_backend_config       <status-json>
//	verify_backend_ready     migrations_complete | no_migrations_needed
//	cleanup                  cleanup_complete
//	check_all, start_all     {"runtime":"...","backend":"..."}
//
// Only this package renders statuses as strings. Everything below it works
// with service.Status values.
package api
