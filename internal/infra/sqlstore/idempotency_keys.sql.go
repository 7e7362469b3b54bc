package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// An expired key is taken over by the new caller instead of conflicting.
const tryInsertIdempotencyKey = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (key, user_id) DO UPDATE
SET endpoint = EXCLUDED.endpoint,
    request_hash = EXCLUDED.request_hash,
    status = 'processing',
    result_request_id = NULL,
    expires_at = EXCLUDED.expires_at,
    created_at = now(),
    updated_at = now()
WHERE idempotency_keys.expires_at <= now()`

type TryInsertIdempotencyKeyParams struct {
	Key         uuid.UUID          `json:"key"`
	UserID      uuid.UUID          `json:"user_id"`
	Endpoint    string             `json:"endpoint"`
	RequestHash string             `json:"request_hash"`
	ExpiresAt   pgtype.Timestamptz `json:"expires_at"`
}

// TryInsertIdempotencyKey reports whether the caller now owns the key.
func (q *Queries) TryInsertIdempotencyKey(ctx context.Context, db DBTX, arg TryInsertIdempotencyKeyParams) (bool, error) {
	tag, err := db.Exec(ctx, tryInsertIdempotencyKey, arg.Key, arg.UserID, arg.Endpoint, arg.RequestHash, arg.ExpiresAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const getIdempotencyKey = `
SELECT key, user_id, endpoint, request_hash, status, result_request_id, expires_at, created_at, updated_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

type GetIdempotencyKeyParams struct {
	Key    uuid.UUID `json:"key"`
	UserID uuid.UUID `json:"user_id"`
}

func (q *Queries) GetIdempotencyKey(ctx context.Context, db DBTX, arg GetIdempotencyKeyParams) (IdempotencyKeys, error) {
	row := db.QueryRow(ctx, getIdempotencyKey, arg.Key, arg.UserID)
	var i IdempotencyKeys
	err := row.Scan(
		&i.Key,
		&i.UserID,
		&i.Endpoint,
		&i.RequestHash,
		&i.Status,
		&i.ResultRequestID,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const completeIdempotencyKey = `
UPDATE idempotency_keys
SET status = 'completed', result_request_id = $3, updated_at = now()
WHERE key = $1 AND user_id = $2`

type CompleteIdempotencyKeyParams struct {
	Key             uuid.UUID   `json:"key"`
	UserID          uuid.UUID   `json:"user_id"`
	ResultRequestID pgtype.UUID `json:"result_request_id"`
}

func (q *Queries) CompleteIdempotencyKey(ctx context.Context, db DBTX, arg CompleteIdempotencyKeyParams) (int64, error) {
	tag, err := db.Exec(ctx, completeIdempotencyKey, arg.Key, arg.UserID, arg.ResultRequestID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteExpiredIdempotencyKeys = `DELETE FROM idempotency_keys WHERE expires_at <= $1`

func (q *Queries) DeleteExpiredIdempotencyKeys(ctx context.Context, db DBTX, now pgtype.Timestamptz) (int64, error) {
	tag, err := db.Exec(ctx, deleteExpiredIdempotencyKeys, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
