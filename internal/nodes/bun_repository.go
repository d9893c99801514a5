package nodes

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunNodeRepository implements Repository on top of go-repository-bun. Bulk
// operations that must stay atomic (draft deletion, container replacement)
// run inside bun transactions on the raw handle.
type BunNodeRepository struct {
	db   *bun.DB
	repo repository.Repository[*Node]
}

// NewBunNodeRepository creates a node repository backed by the supplied bun DB.
func NewBunNodeRepository(db *bun.DB) *BunNodeRepository {
	return &BunNodeRepository{
		db:   db,
		repo: NewNodeRepository(db),
	}
}

func (r *BunNodeRepository) Create(ctx context.Context, node *Node) (*Node, error) {
	record, err := r.repo.Create(ctx, node)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunNodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Node, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "node", id.String())
	}
	return record, nil
}

func (r *BunNodeRepository) ListByContainer(ctx context.Context, containerID uuid.UUID) ([]*Node, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.container_id = ?", containerID).
				OrderExpr("?TableAlias.position ASC")
		}),
	)
	return records, err
}

func (r *BunNodeRepository) Update(ctx context.Context, node *Node) (*Node, error) {
	record, err := r.repo.Update(ctx, node)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunNodeRepository) DeleteDrafts(ctx context.Context, containerID uuid.UUID) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("node repository: database not configured")
	}

	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Node)(nil)).
			Where("?TableAlias.container_id = ?", containerID).
			Where("?TableAlias.draft = ?", true).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete draft nodes: %w", err)
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *BunNodeRepository) ReplaceContainer(ctx context.Context, containerID uuid.UUID, records []*Node) error {
	if r.db == nil {
		return fmt.Errorf("node repository: database not configured")
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Node)(nil)).
			Where("?TableAlias.container_id = ?", containerID).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear container nodes: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().
			Model(&records).
			Exec(ctx); err != nil {
			return fmt.Errorf("restore container nodes: %w", err)
		}
		return nil
	})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
