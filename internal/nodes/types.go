package nodes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-participatory/internal/domain"
)

// Node is one section, sub section, or article of a participatory text.
// Positions are 1-based, unique and contiguous within a container.
type Node struct {
	bun.BaseModel `bun:"table:participatory_nodes,alias:pn"`

	ID          uuid.UUID    `bun:",pk,type:uuid" json:"id"`
	ContainerID uuid.UUID    `bun:"container_id,notnull,type:uuid" json:"container_id"`
	Level       domain.Level `bun:"level,notnull" json:"level"`
	Title       string       `bun:"title,notnull" json:"title"`
	Body        string       `bun:"body" json:"body,omitempty"`
	Position    int          `bun:"position,notnull" json:"position"`
	Draft       bool         `bun:"draft,notnull,default:true" json:"draft"`
	PublishedAt *time.Time   `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedBy   uuid.UUID    `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID    `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt   time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Status reports the lifecycle state derived from the draft flag.
func (n *Node) Status() domain.Status {
	if n.Draft {
		return domain.StatusDraft
	}
	return domain.StatusPublished
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	copied := *n
	if n.PublishedAt != nil {
		ts := *n.PublishedAt
		copied.PublishedAt = &ts
	}
	return &copied
}

// CloneNodes deep copies a slice of nodes preserving order.
func CloneNodes(records []*Node) []*Node {
	if records == nil {
		return nil
	}
	out := make([]*Node, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	return out
}

// AppendNodeInput captures the fields required to append a node to a container.
type AppendNodeInput struct {
	ContainerID uuid.UUID
	Level       domain.Level
	Title       string
	Body        string
	Actor       uuid.UUID
}
