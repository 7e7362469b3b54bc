package queries

import (
	"context"
	"time"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound = errs.New("request not found")
	ErrRequestAccess   = errs.New("request access denied")
)

type RequestReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RequestView, error)
	ListFirstPage(ctx context.Context, filters RequestFilters, limit int32) ([]*RequestView, error)
	ListKeyset(ctx context.Context, filters RequestFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*RequestView, error)
	Stats(ctx context.Context) (*RequestStats, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

type RequestQueries interface {
	GetDetail(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole user.Role) (*RequestDetail, error)
	ListMine(ctx context.Context, userID uuid.UUID, status *string, cursor *Cursor, limit int) ([]*RequestView, *Cursor, error)
	ListAll(ctx context.Context, status *string, cursor *Cursor, limit int) ([]*RequestView, *Cursor, error)
	Stats(ctx context.Context) (*RequestStats, error)
}

type requestQueriesImpl struct {
	repo     RequestReadStore
	products ProductReadStore
}

func NewRequestQueries(repo RequestReadStore, products ProductReadStore) RequestQueries {
	return &requestQueriesImpl{repo: repo, products: products}
}

// GetDetail returns the request with its matched products. Only the owner
// and admins may see it.
func (q *requestQueriesImpl) GetDetail(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole user.Role) (*RequestDetail, error) {
	rv, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if rv.UserID != actorID && actorRole != user.RoleAdmin {
		return nil, ErrRequestAccess
	}

	matched := []*ProductView{}
	if len(rv.MatchedProductIDs) > 0 {
		matched, err = q.products.FindByIDs(ctx, rv.MatchedProductIDs)
		if err != nil {
			return nil, err
		}
	}
	return &RequestDetail{Request: rv, MatchedProducts: matched}, nil
}

func (q *requestQueriesImpl) ListMine(ctx context.Context, userID uuid.UUID, status *string, cursor *Cursor, limit int) ([]*RequestView, *Cursor, error) {
	return q.list(ctx, RequestFilters{UserID: &userID, Status: status}, cursor, limit)
}

func (q *requestQueriesImpl) ListAll(ctx context.Context, status *string, cursor *Cursor, limit int) ([]*RequestView, *Cursor, error) {
	return q.list(ctx, RequestFilters{Status: status}, cursor, limit)
}

func (q *requestQueriesImpl) Stats(ctx context.Context) (*RequestStats, error) {
	return q.repo.Stats(ctx)
}

func (q *requestQueriesImpl) list(ctx context.Context, filters RequestFilters, cursor *Cursor, limit int) ([]*RequestView, *Cursor, error) {
	return paginate(cursor, limit,
		func(n int32) ([]*RequestView, error) {
			return q.repo.ListFirstPage(ctx, filters, n)
		},
		func(lastCreatedAt time.Time, lastID uuid.UUID, n int32) ([]*RequestView, error) {
			return q.repo.ListKeyset(ctx, filters, lastCreatedAt, lastID, n)
		},
		func(v *RequestView) (time.Time, uuid.UUID) { return v.CreatedAt, v.ID },
	)
}
