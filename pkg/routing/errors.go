package routing

import (
	"errors"
	"fmt"
)

// ErrNoProviders is returned when no candidate accepted the request and
// no candidate produced an error either.
var ErrNoProviders = errors.New("no available providers")

// ErrEmptyPrompt is returned for a request without a prompt.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// UnknownProviderError is returned when an admin operation names a
// provider the router does not own.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.ID)
}
