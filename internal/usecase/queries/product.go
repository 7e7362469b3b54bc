package queries

import (
	"context"
	"time"

	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrProductNotFound = errs.New("product not found")

type ProductReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ProductView, error)
	ListFirstPage(ctx context.Context, filters ProductFilters, limit int32) ([]*ProductView, error)
	ListKeyset(ctx context.Context, filters ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*ProductView, error)
	StatsByPlatform(ctx context.Context) ([]PlatformStats, error)
}

// ProductQueries serves the public catalog. Listings only show FRESH
// products, newest first.
type ProductQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context, filters ProductFilters, cursor *Cursor, limit int) ([]*ProductView, *Cursor, error)
	StatsByPlatform(ctx context.Context) ([]PlatformStats, error)
}

type productQueriesImpl struct {
	repo ProductReadStore
}

func NewProductQueries(repo ProductReadStore) ProductQueries {
	return &productQueriesImpl{repo: repo}
}

func (q *productQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	pv, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return pv, nil
}

func (q *productQueriesImpl) List(ctx context.Context, filters ProductFilters, cursor *Cursor, limit int) ([]*ProductView, *Cursor, error) {
	return paginate(cursor, limit,
		func(n int32) ([]*ProductView, error) {
			return q.repo.ListFirstPage(ctx, filters, n)
		},
		func(lastCreatedAt time.Time, lastID uuid.UUID, n int32) ([]*ProductView, error) {
			return q.repo.ListKeyset(ctx, filters, lastCreatedAt, lastID, n)
		},
		func(v *ProductView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID },
	)
}

func (q *productQueriesImpl) StatsByPlatform(ctx context.Context) ([]PlatformStats, error) {
	return q.repo.StatsByPlatform(ctx)
}
