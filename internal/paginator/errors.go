package paginator

import "errors"

// Sentinel errors.
var (
	ErrNilLoader          = errors.New("paginator: loader cannot be nil")
	ErrClosed             = errors.New("paginator: closed")
	ErrLoaderPanic        = errors.New("paginator: loader panicked")
	ErrMissingLoaderFunc  = errors.New("paginator: loader function not set")
	ErrUnknownMergePolicy = errors.New("paginator: unknown merge policy")
)
