package nodes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/logging"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

// Store exposes the ordered node collection of a container. Every mutating
// call holds the container's lock for its full duration, keeping the
// contiguous position invariant safe under concurrent callers.
type Store interface {
	Append(ctx context.Context, input AppendNodeInput) (*Node, error)
	Get(ctx context.Context, containerID, nodeID uuid.UUID) (*Node, error)
	List(ctx context.Context, containerID uuid.UUID) ([]*Node, error)
	Move(ctx context.Context, containerID, nodeID uuid.UUID, newPosition int) error
	Update(ctx context.Context, node *Node) (*Node, error)
	DeleteDrafts(ctx context.Context, containerID uuid.UUID) (int, error)
	Snapshot(ctx context.Context, containerID uuid.UUID) ([]*Node, error)
	// Replace atomically swaps the container's node set for the supplied
	// records. Snapshot rollback and the publish commit both go through here,
	// so readers only ever observe the set before or after the swap.
	Replace(ctx context.Context, containerID uuid.UUID, records []*Node) error
	// Locked runs fn while holding the container's lock. Store calls made from
	// inside fn join the same critical section instead of re-acquiring.
	Locked(ctx context.Context, containerID uuid.UUID, fn func(ctx context.Context) error) error
}

// StoreOption configures the store at construction time.
type StoreOption func(*store)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// IDGenerator produces identifiers for new nodes.
type IDGenerator func() uuid.UUID

// WithIDGenerator overrides node ID generation.
func WithIDGenerator(generator IDGenerator) StoreOption {
	return func(s *store) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger injects the store logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) StoreOption {
	return func(s *store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxNodes bounds how many nodes a single container may hold. Zero means
// unbounded.
func WithMaxNodes(limit int) StoreOption {
	return func(s *store) {
		if limit < 0 {
			limit = 0
		}
		s.maxNodes = limit
	}
}

type store struct {
	repo     Repository
	locks    *containerLocks
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
	maxNodes int
}

// NewStore constructs an ordered node store over the supplied repository.
func NewStore(repo Repository, opts ...StoreOption) Store {
	s := &store{
		repo:   repo,
		locks:  newContainerLocks(),
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Locked(ctx context.Context, containerID uuid.UUID, fn func(ctx context.Context) error) error {
	if containerID == uuid.Nil {
		return ErrContainerRequired
	}
	if lockHeld(ctx, containerID) {
		return fn(ctx)
	}
	release, err := s.locks.acquire(ctx, containerID)
	if err != nil {
		return err
	}
	defer release()
	return fn(withLockHeld(ctx, containerID))
}

// Append assigns the next available position and persists the node as a draft.
func (s *store) Append(ctx context.Context, input AppendNodeInput) (*Node, error) {
	if input.ContainerID == uuid.Nil {
		return nil, ErrContainerRequired
	}
	if !input.Level.Valid() {
		return nil, ErrLevelInvalid
	}

	var created *Node
	err := s.Locked(ctx, input.ContainerID, func(ctx context.Context) error {
		existing, err := s.repo.ListByContainer(ctx, input.ContainerID)
		if err != nil {
			return err
		}
		if s.maxNodes > 0 && len(existing) >= s.maxNodes {
			return ErrNodeLimitExceeded
		}

		now := s.now()
		node := &Node{
			ID:          s.id(),
			ContainerID: input.ContainerID,
			Level:       input.Level,
			Title:       strings.TrimSpace(input.Title),
			Body:        input.Body,
			Position:    len(existing) + 1,
			Draft:       true,
			CreatedBy:   input.Actor,
			UpdatedBy:   input.Actor,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		created, err = s.repo.Create(ctx, node)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("node.append", "container_id", input.ContainerID, "node_id", created.ID, "position", created.Position)
	return created, nil
}

// Get fetches one node, scoped to the container.
func (s *store) Get(ctx context.Context, containerID, nodeID uuid.UUID) (*Node, error) {
	node, err := s.repo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.ContainerID != containerID {
		return nil, &NotFoundError{Resource: "node", Key: nodeID.String()}
	}
	return node, nil
}

// List returns the container's nodes in position order.
func (s *store) List(ctx context.Context, containerID uuid.UUID) ([]*Node, error) {
	if containerID == uuid.Nil {
		return nil, ErrContainerRequired
	}
	return s.repo.ListByContainer(ctx, containerID)
}

// Move relocates a draft node, shifting the nodes between the old and new
// position so the sequence stays contiguous. An out-of-range target returns
// RangeError with no state change.
func (s *store) Move(ctx context.Context, containerID, nodeID uuid.UUID, newPosition int) error {
	if containerID == uuid.Nil {
		return ErrContainerRequired
	}

	return s.Locked(ctx, containerID, func(ctx context.Context) error {
		siblings, err := s.repo.ListByContainer(ctx, containerID)
		if err != nil {
			return err
		}

		if newPosition < 1 || newPosition > len(siblings) {
			return &RangeError{Position: newPosition, Max: len(siblings)}
		}

		currentIdx := -1
		for idx, sibling := range siblings {
			if sibling.ID == nodeID {
				currentIdx = idx
				break
			}
		}
		if currentIdx == -1 {
			return &NotFoundError{Resource: "node", Key: nodeID.String()}
		}
		moved := siblings[currentIdx]
		if !moved.Draft {
			return ErrNodePublished
		}

		if newPosition-1 == currentIdx {
			return nil
		}

		// Remove and re-insert, then rewrite only the positions that changed.
		remaining := make([]*Node, 0, len(siblings)-1)
		remaining = append(remaining, siblings[:currentIdx]...)
		remaining = append(remaining, siblings[currentIdx+1:]...)

		reordered := make([]*Node, 0, len(siblings))
		reordered = append(reordered, remaining[:newPosition-1]...)
		reordered = append(reordered, moved)
		reordered = append(reordered, remaining[newPosition-1:]...)

		for idx, sibling := range reordered {
			want := idx + 1
			if sibling.Position == want {
				continue
			}
			sibling.Position = want
			sibling.UpdatedAt = s.now()
			if _, err := s.repo.Update(ctx, sibling); err != nil {
				return err
			}
		}

		s.logger.Debug("node.move", "container_id", containerID, "node_id", nodeID, "position", newPosition)
		return nil
	})
}

// Update persists field changes on an existing node.
func (s *store) Update(ctx context.Context, node *Node) (*Node, error) {
	if node == nil || node.ContainerID == uuid.Nil {
		return nil, ErrContainerRequired
	}

	var updated *Node
	err := s.Locked(ctx, node.ContainerID, func(ctx context.Context) error {
		node.UpdatedAt = s.now()
		var err error
		updated, err = s.repo.Update(ctx, node)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDrafts removes every draft node of the container in one transaction.
func (s *store) DeleteDrafts(ctx context.Context, containerID uuid.UUID) (int, error) {
	if containerID == uuid.Nil {
		return 0, ErrContainerRequired
	}

	removed := 0
	err := s.Locked(ctx, containerID, func(ctx context.Context) error {
		var err error
		removed, err = s.repo.DeleteDrafts(ctx, containerID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("node.delete_drafts", "container_id", containerID, "removed", removed)
	return removed, nil
}

// Snapshot captures the container's full node set for later restoration.
func (s *store) Snapshot(ctx context.Context, containerID uuid.UUID) ([]*Node, error) {
	records, err := s.repo.ListByContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	return CloneNodes(records), nil
}

// Replace rewrites the container's node set in one repository call.
func (s *store) Replace(ctx context.Context, containerID uuid.UUID, records []*Node) error {
	if containerID == uuid.Nil {
		return ErrContainerRequired
	}
	return s.Locked(ctx, containerID, func(ctx context.Context) error {
		return s.repo.ReplaceContainer(ctx, containerID, CloneNodes(records))
	})
}
