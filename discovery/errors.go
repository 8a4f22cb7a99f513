package discovery

import "errors"

var (
	// ErrInstanceNotFound means no instance with the given ID is registered.
	ErrInstanceNotFound = errors.New("discovery: instance not found")

	// ErrNoInstances means discovery returned no healthy instance for the
	// requested service.
	ErrNoInstances = errors.New("discovery: no healthy instances")

	// ErrInvalidInstance means a registration was missing required fields.
	ErrInvalidInstance = errors.New("discovery: invalid instance")
)
