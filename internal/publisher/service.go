package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/editor"
	"github.com/goliatone/go-participatory/internal/logging"
	"github.com/goliatone/go-participatory/internal/nodes"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

// Coordinator publishes a container's draft nodes in one all-or-nothing
// transition. Any failure in either phase restores the container to its
// pre-call state; readers never observe a partially published container.
type Coordinator interface {
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
}

// PublishRequest carries the pending edits to apply before commit. Edits may
// be empty; phase 2 still validates every draft node of the container.
type PublishRequest struct {
	ContainerID uuid.UUID
	Actor       uuid.UUID
	Edits       []editor.NodeEdit
}

// PublishResult reports a successful publication.
type PublishResult struct {
	PublishedAt time.Time
	Nodes       []*nodes.Node
}

var (
	ErrContainerRequired = errors.New("publisher: container id is required")
	ErrNothingToPublish  = errors.New("publisher: container has no draft nodes")
)

// Option configures the coordinator at construction time.
type Option func(*coordinator)

// WithClock overrides the clock stamping PublishedAt.
func WithClock(clock func() time.Time) Option {
	return func(c *coordinator) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithLogger injects the coordinator logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type coordinator struct {
	store  nodes.Store
	editor editor.Service
	now    func() time.Time
	logger interfaces.Logger
}

// NewCoordinator constructs a publish coordinator over the store and editor.
func NewCoordinator(store nodes.Store, editorService editor.Service, opts ...Option) Coordinator {
	c := &coordinator{
		store:  store,
		editor: editorService,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish runs two phases inside the container's critical section.
//
// Phase 1 applies the pending edits through the draft editor. Phase 2
// validates and stamps every draft node of the container, not just those the
// edits touched, with one shared timestamp. A non-empty failure map from
// either phase rolls back both and surfaces as *editor.ValidationError.
func (c *coordinator) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.ContainerID == uuid.Nil {
		return nil, ErrContainerRequired
	}

	var result *PublishResult
	err := c.store.Locked(ctx, req.ContainerID, func(ctx context.Context) error {
		snapshot, err := c.store.Snapshot(ctx, req.ContainerID)
		if err != nil {
			return err
		}

		restore := func() error {
			return c.store.Replace(ctx, req.ContainerID, snapshot)
		}

		applied, err := c.editor.ApplyEdits(ctx, editor.ApplyEditsRequest{
			ContainerID: req.ContainerID,
			Actor:       req.Actor,
			Edits:       req.Edits,
		})
		if err != nil {
			if restoreErr := restore(); restoreErr != nil {
				c.logger.Error("publish.rollback.failed", "container_id", req.ContainerID, "error", restoreErr)
			}
			return err
		}
		if !applied.Failures.Empty() {
			if restoreErr := restore(); restoreErr != nil {
				return restoreErr
			}
			return &editor.ValidationError{Failures: applied.Failures}
		}

		records, err := c.store.List(ctx, req.ContainerID)
		if err != nil {
			if restoreErr := restore(); restoreErr != nil {
				c.logger.Error("publish.rollback.failed", "container_id", req.ContainerID, "error", restoreErr)
			}
			return err
		}
		if len(records) == 0 {
			return ErrNothingToPublish
		}

		failures := editor.FailureMap{}
		for _, record := range records {
			if !record.Draft {
				failures.Add(record.ID, "node is already published")
				continue
			}
			if errs := nodes.Validate(record); errs != nil {
				failures.Add(record.ID, nodes.Messages(errs)...)
			}
		}
		if !failures.Empty() {
			if restoreErr := restore(); restoreErr != nil {
				return restoreErr
			}
			return &editor.ValidationError{Failures: failures}
		}

		// Stamp clones and swap the whole container in one call; a reader
		// outside the critical section sees either every node draft or every
		// node published, never a half-committed mix.
		publishedAt := c.now().UTC()
		published := nodes.CloneNodes(records)
		for _, record := range published {
			record.Draft = false
			ts := publishedAt
			record.PublishedAt = &ts
			record.UpdatedBy = req.Actor
			record.UpdatedAt = publishedAt
		}

		if err := c.store.Replace(ctx, req.ContainerID, published); err != nil {
			if restoreErr := restore(); restoreErr != nil {
				c.logger.Error("publish.rollback.failed", "container_id", req.ContainerID, "error", restoreErr)
			}
			return err
		}

		result = &PublishResult{
			PublishedAt: publishedAt,
			Nodes:       published,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("publish.committed",
		"container_id", req.ContainerID,
		"nodes", len(result.Nodes),
		"published_at", result.PublishedAt,
	)
	return result, nil
}
