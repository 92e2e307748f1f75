package chat

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrPersistenceUnavailable marks a failure to reach the store.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrConsistency marks a conversation that was just inserted but
	// could not be found on re-read. Fatal for the request, not retried.
	ErrConsistency = errors.New("conversation created but not found")
)

// persistenceErr tags err as a store failure. Both the tag and the
// original cause stay matchable through the chain.
func persistenceErr(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
}
