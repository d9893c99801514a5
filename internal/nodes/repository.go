package nodes

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository abstracts storage operations for participatory text nodes.
type Repository interface {
	Create(ctx context.Context, node *Node) (*Node, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Node, error)
	ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*Node, error)
	Update(ctx context.Context, node *Node) (*Node, error)
	DeleteDrafts(ctx context.Context, containerID uuid.UUID) (int, error)
	// ReplaceContainer swaps every node of the container for the supplied set
	// in one logical transaction. Used by snapshot based rollback.
	ReplaceContainer(ctx context.Context, containerID uuid.UUID, records []*Node) error
}

// NewNodeRepository builds the generic bun-backed repository for Node records.
func NewNodeRepository(db *bun.DB) repository.Repository[*Node] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Node]{
		NewRecord: func() *Node { return &Node{} },
		GetID: func(n *Node) uuid.UUID {
			return n.ID
		},
		SetID: func(n *Node, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(n *Node) string {
			if n == nil {
				return ""
			}
			return n.ID.String()
		},
	})
}
