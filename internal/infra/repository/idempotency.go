package repository

import (
	"context"
	"time"

	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"
	"affiliate-notify/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IdempotencyWriteQueries interface {
	TryInsertIdempotencyKey(ctx context.Context, db sqlstore.DBTX, arg sqlstore.TryInsertIdempotencyKeyParams) (bool, error)
	GetIdempotencyKey(ctx context.Context, db sqlstore.DBTX, arg sqlstore.GetIdempotencyKeyParams) (sqlstore.IdempotencyKeys, error)
	CompleteIdempotencyKey(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CompleteIdempotencyKeyParams) (int64, error)
	DeleteExpiredIdempotencyKeys(ctx context.Context, db sqlstore.DBTX, now pgtype.Timestamptz) (int64, error)
}

type IdempotencyRepository struct {
	queries IdempotencyWriteQueries
	db      sqlstore.DBTX
}

func NewIdempotencyRepository(queries IdempotencyWriteQueries, db sqlstore.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{
		queries: queries,
		db:      db,
	}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx sqlstore.DBTX, rec shared.NewIdempotencyKey) (bool, error) {
	claimed, err := r.queries.TryInsertIdempotencyKey(ctx, tx, sqlstore.TryInsertIdempotencyKeyParams{
		Key:         rec.Key,
		UserID:      rec.UserID,
		Endpoint:    rec.Endpoint,
		RequestHash: rec.RequestHash,
		ExpiresAt:   pgconv.TimeToPgtype(rec.ExpiresAt),
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return claimed, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, tx sqlstore.DBTX, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	row, err := r.queries.GetIdempotencyKey(ctx, tx, sqlstore.GetIdempotencyKeyParams{
		Key:    key,
		UserID: userID,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &shared.IdempotencyRecord{
		Key:             row.Key,
		UserID:          row.UserID,
		Endpoint:        row.Endpoint,
		RequestHash:     row.RequestHash,
		Status:          row.Status,
		ResultRequestID: pgconv.UUIDPtrFromPgtype(row.ResultRequestID),
		ExpiresAt:       pgconv.TimeFromPgtype(row.ExpiresAt),
	}, nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, tx sqlstore.DBTX, key, userID, resultID uuid.UUID) error {
	affected, err := r.queries.CompleteIdempotencyKey(ctx, tx, sqlstore.CompleteIdempotencyKeyParams{
		Key:             key,
		UserID:          userID,
		ResultRequestID: pgconv.UUIDPtrToPgtype(&resultID),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, tx sqlstore.DBTX, now time.Time) (int64, error) {
	count, err := r.queries.DeleteExpiredIdempotencyKeys(ctx, tx, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return count, nil
}
