// Package orchestrator is the single entry point for lifecycle operations on
// the local development environment.
//
// It owns one ManagedService per external dependency:
//
//   - the container runtime (Docker Desktop by default)
//   - the backend stack (the Supabase local stack by default)
//
// and wires each to an inspector (status classification) and a controller
// (start, stop, readiness). Callers never talk to those directly.
//
// # Ordering
//
// The backend stack runs in containers, so StartAllInOrder starts the runtime
// first and polls it until it reports Running before issuing the backend
// start. Individual Start calls do not enforce this ordering.
//
// # Concurrency
//
// Every method is safe for concurrent use. Concurrent Check calls for the
// same service share one in-flight inspection; results are never cached
// across calls. Start is serialized per service by its controller.
//
// # State
//
// Every operation publishes its outcome to a state.Store so that a host
// shell can subscribe to transitions instead of polling.
package orchestrator
