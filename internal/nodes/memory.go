package nodes

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryNodeRepository is an in-memory implementation for scaffolding and tests.
type MemoryNodeRepository struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]*Node
}

// NewMemoryNodeRepository creates an empty in-memory node repository.
func NewMemoryNodeRepository() *MemoryNodeRepository {
	return &MemoryNodeRepository{
		nodes: make(map[uuid.UUID]*Node),
	}
}

// Create inserts the supplied node.
func (m *MemoryNodeRepository) Create(_ context.Context, node *Node) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := node.Clone()
	m.nodes[copied.ID] = copied
	return copied.Clone(), nil
}

// GetByID retrieves a node by identifier.
func (m *MemoryNodeRepository) GetByID(_ context.Context, id uuid.UUID) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.nodes[id]
	if !ok {
		return nil, &NotFoundError{Resource: "node", Key: id.String()}
	}
	return record.Clone(), nil
}

// ListByContainer returns the container's nodes in position order.
func (m *MemoryNodeRepository) ListByContainer(_ context.Context, containerID uuid.UUID) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Node, 0)
	for _, record := range m.nodes {
		if record.ContainerID == containerID {
			out = append(out, record.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

// Update replaces a stored node, returning NotFoundError when absent.
func (m *MemoryNodeRepository) Update(_ context.Context, node *Node) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[node.ID]; !ok {
		return nil, &NotFoundError{Resource: "node", Key: node.ID.String()}
	}
	copied := node.Clone()
	m.nodes[copied.ID] = copied
	return copied.Clone(), nil
}

// DeleteDrafts removes every draft node of the container.
func (m *MemoryNodeRepository) DeleteDrafts(_ context.Context, containerID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, record := range m.nodes {
		if record.ContainerID == containerID && record.Draft {
			delete(m.nodes, id)
			removed++
		}
	}
	return removed, nil
}

// ReplaceContainer swaps the container's node set for the supplied records.
func (m *MemoryNodeRepository) ReplaceContainer(_ context.Context, containerID uuid.UUID, records []*Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, record := range m.nodes {
		if record.ContainerID == containerID {
			delete(m.nodes, id)
		}
	}
	for _, record := range records {
		copied := record.Clone()
		m.nodes[copied.ID] = copied
	}
	return nil
}
