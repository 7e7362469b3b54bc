package readstore

import (
	"context"
	"time"

	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/repository/converter"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"
	"affiliate-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const topCategoryLimit = 10

type RequestReadQueries interface {
	GetShoppingRequestByID(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (sqlstore.ShoppingRequests, error)
	ListShoppingRequests(ctx context.Context, db sqlstore.DBTX, arg sqlstore.ListShoppingRequestsParams) ([]sqlstore.ShoppingRequests, error)
	FindActiveRequestsForProduct(ctx context.Context, db sqlstore.DBTX, arg sqlstore.FindActiveRequestsForProductParams) ([]sqlstore.ShoppingRequests, error)
	CountRequestsByStatus(ctx context.Context, db sqlstore.DBTX) ([]sqlstore.CountRequestsByStatusRow, error)
	CountUserRequestsByStatus(ctx context.Context, db sqlstore.DBTX, userID uuid.UUID) ([]sqlstore.CountRequestsByStatusRow, error)
	TopRequestCategories(ctx context.Context, db sqlstore.DBTX, limit int32) ([]sqlstore.TopRequestCategoriesRow, error)
}

type RequestReadStore struct {
	queries RequestReadQueries
	db      sqlstore.DBTX
}

func NewRequestReadStore(queries RequestReadQueries, db sqlstore.DBTX) *RequestReadStore {
	return &RequestReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *RequestReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.RequestView, error) {
	req, err := r.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestView(req), nil
}

func (r *RequestReadStore) ListFirstPage(ctx context.Context, filters queries.RequestFilters, limit int32) ([]*queries.RequestView, error) {
	rows, err := r.queries.ListShoppingRequests(ctx, r.db, requestListParams(filters, limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list requests first page", err)
	}
	return toRequestViews(rows)
}

func (r *RequestReadStore) ListKeyset(ctx context.Context, filters queries.RequestFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.RequestView, error) {
	params := requestListParams(filters, limit)
	params.AfterCreatedAt = pgconv.TimeToPgtype(lastCreatedAt)
	params.AfterID = pgtype.UUID{Bytes: lastID, Valid: true}
	rows, err := r.queries.ListShoppingRequests(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list requests keyset", err)
	}
	return toRequestViews(rows)
}

func (r *RequestReadStore) Stats(ctx context.Context) (*queries.RequestStats, error) {
	counts, err := r.queries.CountRequestsByStatus(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count requests by status", err)
	}
	top, err := r.queries.TopRequestCategories(ctx, r.db, topCategoryLimit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get top request categories", err)
	}

	stats := &queries.RequestStats{
		ByStatus:      make(map[string]int64, len(counts)),
		TopCategories: make([]queries.CategoryCount, len(top)),
	}
	for _, s := range request.Statuses() {
		stats.ByStatus[s.String()] = 0
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
		stats.Total += c.Count
	}
	for i, c := range top {
		stats.TopCategories[i] = queries.CategoryCount{Category: c.Category, Count: c.Total}
	}
	return stats, nil
}

// CountByUser reports how many of the user's requests sit in each status.
// Statuses with no requests are present with a zero count.
func (r *RequestReadStore) CountByUser(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	rows, err := r.queries.CountUserRequestsByStatus(ctx, r.db, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count user requests", err)
	}
	counts := make(map[string]int64, len(request.Statuses()))
	for _, s := range request.Statuses() {
		counts[s.String()] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *RequestReadStore) LoadByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	row, err := r.queries.GetShoppingRequestByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("request not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get request by id", err)
	}
	return converter.RequestFromInfra(row)
}

// LoadActiveForProduct pages through open, unexpired requests that could
// want item, oldest first. Requests that already matched item are skipped.
func (r *RequestReadStore) LoadActiveForProduct(ctx context.Context, item *product.Product, now time.Time, afterCreatedAt *time.Time, afterID uuid.UUID, limit int32) ([]*request.Request, error) {
	params := sqlstore.FindActiveRequestsForProductParams{
		Category:  item.Category(),
		Now:       pgconv.TimeToPgtype(now),
		ProductID: item.ID(),
		Limit:     limit,
	}
	if afterCreatedAt != nil {
		params.AfterCreatedAt = pgconv.TimeToPgtype(*afterCreatedAt)
		params.AfterID = pgtype.UUID{Bytes: afterID, Valid: true}
	}
	rows, err := r.queries.FindActiveRequestsForProduct(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active requests for product", err)
	}
	return converter.RequestsFromInfra(rows)
}

func requestListParams(filters queries.RequestFilters, limit int32) sqlstore.ListShoppingRequestsParams {
	return sqlstore.ListShoppingRequestsParams{
		UserID: pgconv.UUIDPtrToPgtype(filters.UserID),
		Status: pgconv.StringPtrToPgtype(filters.Status),
		Limit:  limit,
	}
}

func toRequestViews(rows []sqlstore.ShoppingRequests) ([]*queries.RequestView, error) {
	reqs, err := converter.RequestsFromInfra(rows)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode requests", err)
	}
	views := make([]*queries.RequestView, len(reqs))
	for i, req := range reqs {
		views[i] = toRequestView(req)
	}
	return views, nil
}

func toRequestView(req *request.Request) *queries.RequestView {
	return &queries.RequestView{
		ID:                req.ID(),
		UserID:            req.UserID(),
		UserEmail:         req.UserEmail(),
		Query:             req.Query(),
		Intent:            req.Intent(),
		Status:            req.Status().String(),
		MatchedProductIDs: req.MatchedProductIDs(),
		Notifications:     req.Notifications(),
		FulfilledAt:       req.FulfilledAt(),
		ExpiresAt:         req.ExpiresAt(),
		CreatedAt:         req.CreatedAt(),
		UpdatedAt:         req.UpdatedAt(),
	}
}
