package readstore

import (
	"context"
	"strings"
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/repository/converter"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"
	"affiliate-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductReadQueries interface {
	GetProductByID(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (sqlstore.Products, error)
	GetProductForUpdate(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (sqlstore.Products, error)
	GetProductsByIDs(ctx context.Context, db sqlstore.DBTX, ids []uuid.UUID) ([]sqlstore.Products, error)
	ListFreshProducts(ctx context.Context, db sqlstore.DBTX, arg sqlstore.ListFreshProductsParams) ([]sqlstore.Products, error)
	FindCandidateProducts(ctx context.Context, db sqlstore.DBTX, arg sqlstore.FindCandidateProductsParams) ([]sqlstore.Products, error)
	GetProductStatsByPlatform(ctx context.Context, db sqlstore.DBTX) ([]sqlstore.GetProductStatsByPlatformRow, error)
}

type ProductReadStore struct {
	queries ProductReadQueries
	db      sqlstore.DBTX
}

func NewProductReadStore(queries ProductReadQueries, db sqlstore.DBTX) *ProductReadStore {
	return &ProductReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	row, err := r.queries.GetProductByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get product by id", err)
	}
	return toProductView(row), nil
}

func (r *ProductReadStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*queries.ProductView, error) {
	if len(ids) == 0 {
		return []*queries.ProductView{}, nil
	}
	rows, err := r.queries.GetProductsByIDs(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get products by ids", err)
	}
	return toProductViews(rows), nil
}

func (r *ProductReadStore) ListFirstPage(ctx context.Context, filters queries.ProductFilters, limit int32) ([]*queries.ProductView, error) {
	rows, err := r.queries.ListFreshProducts(ctx, r.db, listParams(filters, limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products first page", err)
	}
	return toProductViews(rows), nil
}

func (r *ProductReadStore) ListKeyset(ctx context.Context, filters queries.ProductFilters, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ProductView, error) {
	params := listParams(filters, limit)
	params.AfterCreatedAt = pgconv.TimeToPgtype(lastCreatedAt)
	params.AfterID = pgtype.UUID{Bytes: lastID, Valid: true}
	rows, err := r.queries.ListFreshProducts(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products keyset", err)
	}
	return toProductViews(rows), nil
}

func (r *ProductReadStore) StatsByPlatform(ctx context.Context) ([]queries.PlatformStats, error) {
	rows, err := r.queries.GetProductStatsByPlatform(ctx, r.db)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get product stats", err)
	}
	stats := make([]queries.PlatformStats, len(rows))
	for i, row := range rows {
		stats[i] = queries.PlatformStats{
			Platform: row.Platform,
			Total:    row.Total,
			Fresh:    row.Fresh,
			AvgPrice: row.AvgPrice,
			Views:    row.Views,
			Clicks:   row.Clicks,
		}
	}
	return stats, nil
}

// LoadByID returns the aggregate rather than a view, for the write side.
func (r *ProductReadStore) LoadByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	row, err := r.queries.GetProductByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load product", err)
	}
	return converter.ProductFromInfra(row)
}

func (r *ProductReadStore) LoadForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	row, err := r.queries.GetProductForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock product", err)
	}
	return converter.ProductFromInfra(row)
}

func (r *ProductReadStore) LoadByIDs(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.queries.GetProductsByIDs(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load products", err)
	}
	return converter.ProductsFromInfra(rows)
}

// LoadCandidates pre-filters FRESH products in SQL with the same predicate
// the domain applies, newest first.
func (r *ProductReadStore) LoadCandidates(ctx context.Context, in intent.ParsedIntent, exclude []uuid.UUID, limit int32) ([]*product.Product, error) {
	platforms := make([]string, len(in.Platforms))
	for i, p := range in.Platforms {
		platforms[i] = p.String()
	}
	rows, err := r.queries.FindCandidateProducts(ctx, r.db, sqlstore.FindCandidateProductsParams{
		Category:   pgconv.TextOrNull(in.CategoryValue()),
		MinPrice:   in.MinPrice,
		MaxPrice:   pgconv.Int8PtrToPgtype(in.MaxPrice),
		Platforms:  platforms,
		ExcludeIDs: exclude,
		Limit:      limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find candidate products", err)
	}
	return converter.ProductsFromInfra(rows)
}

func listParams(filters queries.ProductFilters, limit int32) sqlstore.ListFreshProductsParams {
	return sqlstore.ListFreshProductsParams{
		Category: likeFilter(filters.Category),
		MinPrice: pgconv.Int8PtrToPgtype(filters.MinPrice),
		MaxPrice: pgconv.Int8PtrToPgtype(filters.MaxPrice),
		Platform: pgconv.StringPtrToPgtype(filters.Platform),
		Search:   likeFilter(filters.Search),
		Limit:    limit,
	}
}

func likeFilter(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgconv.TextOrNull(escapeLike(strings.TrimSpace(*s)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toProductView(row sqlstore.Products) *queries.ProductView {
	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	return &queries.ProductView{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Category:      row.Category,
		Tags:          tags,
		Price:         row.Price,
		OriginalPrice: pgconv.Int8PtrFromPgtype(row.OriginalPrice),
		Discount:      int(row.Discount),
		Platform:      row.Platform,
		AffiliateLink: row.AffiliateLink,
		ImageURL:      row.ImageUrl,
		ASIN:          pgconv.StringFromPgtype(row.Asin),
		Strategy:      row.Strategy,
		Freshness:     row.Freshness,
		LastPricedAt:  pgconv.TimeFromPgtype(row.LastPricedAt),
		AdminNotes:    row.AdminNotes,
		Views:         row.Views,
		Clicks:        row.Clicks,
		Conversions:   row.Conversions,
		CreatedAt:     pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:     pgconv.TimeFromPgtype(row.UpdatedAt),
	}
}

func toProductViews(rows []sqlstore.Products) []*queries.ProductView {
	views := make([]*queries.ProductView, len(rows))
	for i, row := range rows {
		views[i] = toProductView(row)
	}
	return views
}
