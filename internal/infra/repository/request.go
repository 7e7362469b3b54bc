package repository

import (
	"context"
	"time"

	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/repository/converter"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RequestWriteQueries interface {
	CreateShoppingRequest(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CreateShoppingRequestParams) error
	UpdateShoppingRequestState(ctx context.Context, db sqlstore.DBTX, arg sqlstore.UpdateShoppingRequestStateParams) (int64, error)
	DeleteShoppingRequest(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (int64, error)
	DeleteShoppingRequests(ctx context.Context, db sqlstore.DBTX, status pgtype.Text) (int64, error)
	ListExpiredActiveRequests(ctx context.Context, db sqlstore.DBTX, arg sqlstore.ListExpiredActiveRequestsParams) ([]sqlstore.ShoppingRequests, error)
}

type RequestRepository struct {
	queries RequestWriteQueries
	db      sqlstore.DBTX
}

func NewRequestRepository(queries RequestWriteQueries, db sqlstore.DBTX) *RequestRepository {
	return &RequestRepository{
		queries: queries,
		db:      db,
	}
}

func (r *RequestRepository) Create(ctx context.Context, tx sqlstore.DBTX, req *request.Request) error {
	params, err := converter.RequestToInfra(req)
	if err != nil {
		return infra.WrapRepoErr("failed to encode request", err)
	}
	if err := r.queries.CreateShoppingRequest(ctx, tx, params); err != nil {
		return infra.WrapRepoErr("failed to create request", err)
	}
	return nil
}

// SaveState persists status, matches and notifications if the row still
// carries the version the aggregate was loaded with. A lost race is
// reported as KindConflict.
func (r *RequestRepository) SaveState(ctx context.Context, tx sqlstore.DBTX, req *request.Request) error {
	row, err := converter.RequestToInfra(req)
	if err != nil {
		return infra.WrapRepoErr("failed to encode request", err)
	}
	n, err := r.queries.UpdateShoppingRequestState(ctx, tx, sqlstore.UpdateShoppingRequestStateParams{
		ID:                row.ID,
		Status:            row.Status,
		MatchedProductIds: row.MatchedProductIds,
		Notifications:     row.Notifications,
		FulfilledAt:       row.FulfilledAt,
		UpdatedAt:         row.UpdatedAt,
		Version:           row.Version,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to update request state", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("request version is stale", nil, infra.KindConflict)
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) error {
	n, err := r.queries.DeleteShoppingRequest(ctx, tx, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete request", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("request not found", nil, infra.KindNotFound)
	}
	return nil
}

// DeleteAll removes every request, or only those in status when given.
func (r *RequestRepository) DeleteAll(ctx context.Context, tx sqlstore.DBTX, status *request.Status) (int64, error) {
	var filter pgtype.Text
	if status != nil {
		filter = pgconv.TextOrNull(status.String())
	}
	n, err := r.queries.DeleteShoppingRequests(ctx, tx, filter)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete requests", err)
	}
	return n, nil
}

func (r *RequestRepository) ListExpired(ctx context.Context, tx sqlstore.DBTX, now time.Time, limit int32) ([]*request.Request, error) {
	rows, err := r.queries.ListExpiredActiveRequests(ctx, tx, sqlstore.ListExpiredActiveRequestsParams{
		Now:   pgconv.TimeToPgtype(now),
		Limit: limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired requests", err)
	}
	return converter.RequestsFromInfra(rows)
}
