package nodes

import (
	"errors"
	"fmt"
)

var (
	ErrContainerRequired = errors.New("nodes: container id is required")
	ErrLevelInvalid      = errors.New("nodes: level is not a known variant")
	ErrNodePublished     = errors.New("nodes: published nodes cannot be modified")
	ErrNodeLimitExceeded = errors.New("nodes: container node limit reached")

	// ErrConcurrencyConflict surfaces when a mutating call could not acquire
	// the per-container serialization before the context expired. The caller
	// decides whether to retry; the store never retries on its own.
	ErrConcurrencyConflict = errors.New("nodes: concurrent operation on container in progress")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// RangeError reports a move target outside the container's position sequence.
// The store guarantees no positions were shifted when this is returned.
type RangeError struct {
	Position int
	Max      int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("nodes: position %d is out of range [1..%d]", e.Position, e.Max)
}
