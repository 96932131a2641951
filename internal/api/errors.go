package api

import "errors"

// Common errors for API operations
var (
	// ErrUnreachable is returned by status checks when the service answers
	// on its port but neither the health probe nor the CLI confirm it.
	ErrUnreachable = errors.New("listening but not responding as expected")

	// ErrUnknownOperation is returned by Call for an unregistered name.
	ErrUnknownOperation = errors.New("unknown operation")
)
