package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const requestColumns = `id, user_id, user_email, query, intent, category, status,
	matched_product_ids, notifications, fulfilled_at, expires_at, version, created_at, updated_at`

func scanShoppingRequest(row interface{ Scan(...any) error }) (ShoppingRequests, error) {
	var i ShoppingRequests
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.UserEmail,
		&i.Query,
		&i.Intent,
		&i.Category,
		&i.Status,
		&i.MatchedProductIds,
		&i.Notifications,
		&i.FulfilledAt,
		&i.ExpiresAt,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectShoppingRequests(rows pgx.Rows, err error) ([]ShoppingRequests, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ShoppingRequests
	for rows.Next() {
		i, err := scanShoppingRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createShoppingRequest = `
INSERT INTO shopping_requests (
	id, user_id, user_email, query, intent, category, status,
	matched_product_ids, notifications, fulfilled_at, expires_at, version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

type CreateShoppingRequestParams = ShoppingRequests

func (q *Queries) CreateShoppingRequest(ctx context.Context, db DBTX, arg CreateShoppingRequestParams) error {
	matched := arg.MatchedProductIds
	if matched == nil {
		matched = []uuid.UUID{}
	}
	_, err := db.Exec(ctx, createShoppingRequest,
		arg.ID,
		arg.UserID,
		arg.UserEmail,
		arg.Query,
		arg.Intent,
		arg.Category,
		arg.Status,
		matched,
		arg.Notifications,
		arg.FulfilledAt,
		arg.ExpiresAt,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getShoppingRequestByID = `SELECT ` + requestColumns + ` FROM shopping_requests WHERE id = $1`

func (q *Queries) GetShoppingRequestByID(ctx context.Context, db DBTX, id uuid.UUID) (ShoppingRequests, error) {
	return scanShoppingRequest(db.QueryRow(ctx, getShoppingRequestByID, id))
}

// The version predicate makes this a compare-and-swap. Zero affected rows
// means another writer got there first.
const updateShoppingRequestState = `
UPDATE shopping_requests SET
	status = $2,
	matched_product_ids = $3,
	notifications = $4,
	fulfilled_at = $5,
	updated_at = $6,
	version = version + 1
WHERE id = $1 AND version = $7`

type UpdateShoppingRequestStateParams struct {
	ID                uuid.UUID          `json:"id"`
	Status            string             `json:"status"`
	MatchedProductIds []uuid.UUID        `json:"matched_product_ids"`
	Notifications     []byte             `json:"notifications"`
	FulfilledAt       pgtype.Timestamptz `json:"fulfilled_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
	Version           int32              `json:"version"`
}

func (q *Queries) UpdateShoppingRequestState(ctx context.Context, db DBTX, arg UpdateShoppingRequestStateParams) (int64, error) {
	matched := arg.MatchedProductIds
	if matched == nil {
		matched = []uuid.UUID{}
	}
	tag, err := db.Exec(ctx, updateShoppingRequestState,
		arg.ID,
		arg.Status,
		matched,
		arg.Notifications,
		arg.FulfilledAt,
		arg.UpdatedAt,
		arg.Version,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const findActiveRequestsForProduct = `
SELECT ` + requestColumns + ` FROM shopping_requests
WHERE status = 'ACTIVE'
  AND expires_at > $2
  AND (category IS NULL
       OR position(lower($1::text) in lower(category)) > 0
       OR position(lower(category) in lower($1::text)) > 0)
  AND NOT ($3::uuid = ANY(matched_product_ids))
  AND ($4::timestamptz IS NULL OR (created_at, id) > ($4, $5::uuid))
ORDER BY created_at, id
LIMIT $6`

type FindActiveRequestsForProductParams struct {
	Category       string             `json:"category"`
	Now            pgtype.Timestamptz `json:"now"`
	ProductID      uuid.UUID          `json:"product_id"`
	AfterCreatedAt pgtype.Timestamptz `json:"after_created_at"`
	AfterID        pgtype.UUID        `json:"after_id"`
	Limit          int32              `json:"limit"`
}

func (q *Queries) FindActiveRequestsForProduct(ctx context.Context, db DBTX, arg FindActiveRequestsForProductParams) ([]ShoppingRequests, error) {
	return collectShoppingRequests(db.Query(ctx, findActiveRequestsForProduct,
		arg.Category,
		arg.Now,
		arg.ProductID,
		arg.AfterCreatedAt,
		arg.AfterID,
		arg.Limit,
	))
}

const listShoppingRequests = `
SELECT ` + requestColumns + ` FROM shopping_requests
WHERE ($1::uuid IS NULL OR user_id = $1)
  AND ($2::text IS NULL OR status = $2)
  AND ($3::timestamptz IS NULL OR (created_at, id) < ($3, $4::uuid))
ORDER BY created_at DESC, id DESC
LIMIT $5`

type ListShoppingRequestsParams struct {
	UserID         pgtype.UUID        `json:"user_id"`
	Status         pgtype.Text        `json:"status"`
	AfterCreatedAt pgtype.Timestamptz `json:"after_created_at"`
	AfterID        pgtype.UUID        `json:"after_id"`
	Limit          int32              `json:"limit"`
}

func (q *Queries) ListShoppingRequests(ctx context.Context, db DBTX, arg ListShoppingRequestsParams) ([]ShoppingRequests, error) {
	return collectShoppingRequests(db.Query(ctx, listShoppingRequests,
		arg.UserID,
		arg.Status,
		arg.AfterCreatedAt,
		arg.AfterID,
		arg.Limit,
	))
}

const listExpiredActiveRequests = `
SELECT ` + requestColumns + ` FROM shopping_requests
WHERE status = 'ACTIVE' AND expires_at <= $1
ORDER BY expires_at, id
LIMIT $2
FOR UPDATE SKIP LOCKED`

type ListExpiredActiveRequestsParams struct {
	Now   pgtype.Timestamptz `json:"now"`
	Limit int32              `json:"limit"`
}

func (q *Queries) ListExpiredActiveRequests(ctx context.Context, db DBTX, arg ListExpiredActiveRequestsParams) ([]ShoppingRequests, error) {
	return collectShoppingRequests(db.Query(ctx, listExpiredActiveRequests, arg.Now, arg.Limit))
}

const countRequestsByStatus = `SELECT status, count(*)::bigint FROM shopping_requests GROUP BY status ORDER BY status`

type CountRequestsByStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (q *Queries) CountRequestsByStatus(ctx context.Context, db DBTX) ([]CountRequestsByStatusRow, error) {
	return collectStatusCounts(db.Query(ctx, countRequestsByStatus))
}

const countUserRequestsByStatus = `SELECT status, count(*)::bigint FROM shopping_requests WHERE user_id = $1 GROUP BY status ORDER BY status`

func (q *Queries) CountUserRequestsByStatus(ctx context.Context, db DBTX, userID uuid.UUID) ([]CountRequestsByStatusRow, error) {
	return collectStatusCounts(db.Query(ctx, countUserRequestsByStatus, userID))
}

func collectStatusCounts(rows pgx.Rows, err error) ([]CountRequestsByStatusRow, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountRequestsByStatusRow
	for rows.Next() {
		var i CountRequestsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const topRequestCategories = `
SELECT category, count(*)::bigint AS total
FROM shopping_requests
WHERE category IS NOT NULL
GROUP BY category
ORDER BY total DESC, category
LIMIT $1`

type TopRequestCategoriesRow struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

func (q *Queries) TopRequestCategories(ctx context.Context, db DBTX, limit int32) ([]TopRequestCategoriesRow, error) {
	rows, err := db.Query(ctx, topRequestCategories, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopRequestCategoriesRow
	for rows.Next() {
		var i TopRequestCategoriesRow
		if err := rows.Scan(&i.Category, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteShoppingRequest = `DELETE FROM shopping_requests WHERE id = $1`

func (q *Queries) DeleteShoppingRequest(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, deleteShoppingRequest, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteShoppingRequests = `DELETE FROM shopping_requests WHERE ($1::text IS NULL OR status = $1)`

func (q *Queries) DeleteShoppingRequests(ctx context.Context, db DBTX, status pgtype.Text) (int64, error) {
	tag, err := db.Exec(ctx, deleteShoppingRequests, status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
