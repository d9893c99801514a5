package nodes

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// containerLocks serializes mutating operations per container. Operations on
// different containers proceed independently; a second writer on the same
// container waits until the first releases, or fails with
// ErrConcurrencyConflict when its context expires first. Entries are
// reference counted and dropped once the last holder or waiter is gone, so
// the map stays bounded by the number of containers under active mutation.
type containerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*containerLock
}

type containerLock struct {
	slot    chan struct{}
	waiters int
}

func newContainerLocks() *containerLocks {
	return &containerLocks{
		locks: make(map[uuid.UUID]*containerLock),
	}
}

func (c *containerLocks) acquire(ctx context.Context, containerID uuid.UUID) (func(), error) {
	c.mu.Lock()
	entry, ok := c.locks[containerID]
	if !ok {
		entry = &containerLock{slot: make(chan struct{}, 1)}
		c.locks[containerID] = entry
	}
	entry.waiters++
	c.mu.Unlock()

	select {
	case entry.slot <- struct{}{}:
		return func() {
			<-entry.slot
			c.forget(containerID, entry)
		}, nil
	case <-ctx.Done():
		c.forget(containerID, entry)
		return nil, fmt.Errorf("%w: %w", ErrConcurrencyConflict, ctx.Err())
	}
}

// forget drops one reference, removing the entry once nobody holds or waits
// on it. A later acquire for the same container starts a fresh entry.
func (c *containerLocks) forget(containerID uuid.UUID, entry *containerLock) {
	c.mu.Lock()
	entry.waiters--
	if entry.waiters == 0 {
		delete(c.locks, containerID)
	}
	c.mu.Unlock()
}

// lockMarker records in the context which container lock the current call
// chain already holds, so nested store calls (editor batch logic running
// inside the publish coordinator's critical section) do not deadlock.
type lockMarker struct{ containerID uuid.UUID }

type lockMarkerKey struct{}

func withLockHeld(ctx context.Context, containerID uuid.UUID) context.Context {
	return context.WithValue(ctx, lockMarkerKey{}, lockMarker{containerID: containerID})
}

func lockHeld(ctx context.Context, containerID uuid.UUID) bool {
	marker, ok := ctx.Value(lockMarkerKey{}).(lockMarker)
	return ok && marker.containerID == containerID
}
