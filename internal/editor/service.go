package editor

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goliatone/go-participatory/internal/logging"
	"github.com/goliatone/go-participatory/internal/nodes"
	"github.com/goliatone/go-participatory/pkg/interfaces"
)

// Service exposes draft editing use-cases: batch edits with aggregated
// per-node failures, and transactional discard of a container's drafts.
type Service interface {
	ApplyEdits(ctx context.Context, req ApplyEditsRequest) (*ApplyResult, error)
	Discard(ctx context.Context, containerID uuid.UUID) (int, error)
}

// NodeEdit describes one node's requested changes. Nil fields are left
// untouched. Body changes on non-article nodes are silently ignored; those
// nodes carry no editable body.
type NodeEdit struct {
	NodeID   uuid.UUID
	Title    *string
	Body     *string
	Position *int
}

// ApplyEditsRequest is a batch of edits applied in caller order.
type ApplyEditsRequest struct {
	ContainerID uuid.UUID
	Actor       uuid.UUID
	Edits       []NodeEdit
}

// ApplyResult reports which edits persisted and which nodes failed
// validation. Valid edits survive even when siblings in the batch fail;
// invalid edits leave their node exactly as it was.
type ApplyResult struct {
	Applied  []*nodes.Node
	Failures FailureMap
}

var (
	ErrContainerRequired = errors.New("editor: container id is required")
	ErrAlreadyPublished  = errors.New("editor: container has published nodes")
)

const (
	msgNodeMissing   = "node does not exist"
	msgNodePublished = "node is already published"
)

// ServiceOption configures the editor at construction time.
type ServiceOption func(*service)

// WithLogger injects the editor logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	store  nodes.Store
	logger interfaces.Logger
}

// NewService constructs a draft editor over the supplied node store.
func NewService(store nodes.Store, opts ...ServiceOption) Service {
	s := &service{
		store:  store,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyEdits processes the batch in caller order: position move first, then
// title, then body, then per-node validation. Failures accumulate; the batch
// never aborts early.
func (s *service) ApplyEdits(ctx context.Context, req ApplyEditsRequest) (*ApplyResult, error) {
	if req.ContainerID == uuid.Nil {
		return nil, ErrContainerRequired
	}

	result := &ApplyResult{Failures: FailureMap{}}
	err := s.store.Locked(ctx, req.ContainerID, func(ctx context.Context) error {
		for _, edit := range req.Edits {
			if err := s.applyEdit(ctx, req, edit, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("editor.apply_edits",
		"container_id", req.ContainerID,
		"applied", len(result.Applied),
		"failed", len(result.Failures),
	)
	return result, nil
}

func (s *service) applyEdit(ctx context.Context, req ApplyEditsRequest, edit NodeEdit, result *ApplyResult) error {
	node, err := s.store.Get(ctx, req.ContainerID, edit.NodeID)
	if err != nil {
		var notFound *nodes.NotFoundError
		if errors.As(err, &notFound) {
			result.Failures.Add(edit.NodeID, msgNodeMissing)
			return nil
		}
		return err
	}
	if !node.Draft {
		result.Failures.Add(edit.NodeID, msgNodePublished)
		return nil
	}

	originalPosition := node.Position
	moved := false

	if edit.Position != nil && *edit.Position != node.Position {
		if err := s.store.Move(ctx, req.ContainerID, node.ID, *edit.Position); err != nil {
			var rangeErr *nodes.RangeError
			if errors.As(err, &rangeErr) {
				result.Failures.Add(edit.NodeID, rangeErr.Error())
				return nil
			}
			return err
		}
		node.Position = *edit.Position
		moved = true
	}

	if edit.Title != nil {
		node.Title = *edit.Title
	}
	if edit.Body != nil && node.Level.HasBody() {
		node.Body = *edit.Body
	}

	if errs := nodes.Validate(node); errs != nil {
		result.Failures.Add(edit.NodeID, nodes.Messages(errs)...)
		// Title and body were never persisted; only the move needs undoing.
		if moved {
			if err := s.store.Move(ctx, req.ContainerID, node.ID, originalPosition); err != nil {
				return err
			}
		}
		return nil
	}

	node.UpdatedBy = req.Actor
	updated, err := s.store.Update(ctx, node)
	if err != nil {
		return err
	}
	result.Applied = append(result.Applied, updated)
	return nil
}

// Discard deletes every draft node of the container in one transaction. The
// operation is unavailable once the container has published nodes.
func (s *service) Discard(ctx context.Context, containerID uuid.UUID) (int, error) {
	if containerID == uuid.Nil {
		return 0, ErrContainerRequired
	}

	removed := 0
	err := s.store.Locked(ctx, containerID, func(ctx context.Context) error {
		records, err := s.store.List(ctx, containerID)
		if err != nil {
			return err
		}
		for _, record := range records {
			if !record.Draft {
				return ErrAlreadyPublished
			}
		}

		removed, err = s.store.DeleteDrafts(ctx, containerID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("editor.discard", "container_id", containerID, "removed", removed)
	return removed, nil
}
