package repository

import (
	"context"
	"time"

	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/repository/converter"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductWriteQueries interface {
	CreateProduct(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CreateProductParams) error
	UpdateProduct(ctx context.Context, db sqlstore.DBTX, arg sqlstore.UpdateProductParams) (int64, error)
	DeleteProduct(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (int64, error)
	IncrementProductViews(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (sqlstore.Products, error)
	IncrementProductClicks(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) (string, error)
	ListProductsForAging(ctx context.Context, db sqlstore.DBTX, arg sqlstore.ListProductsForAgingParams) ([]sqlstore.Products, error)
	SetProductFreshness(ctx context.Context, db sqlstore.DBTX, arg sqlstore.SetProductFreshnessParams) error
}

type ProductRepository struct {
	queries ProductWriteQueries
	db      sqlstore.DBTX
}

func NewProductRepository(queries ProductWriteQueries, db sqlstore.DBTX) *ProductRepository {
	return &ProductRepository{
		queries: queries,
		db:      db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, tx sqlstore.DBTX, p *product.Product) error {
	if err := r.queries.CreateProduct(ctx, tx, converter.ProductToInfra(p)); err != nil {
		return infra.WrapRepoErr("failed to create product", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, tx sqlstore.DBTX, p *product.Product) error {
	n, err := r.queries.UpdateProduct(ctx, tx, converter.ProductToInfra(p))
	if err != nil {
		return infra.WrapRepoErr("failed to update product", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) error {
	n, err := r.queries.DeleteProduct(ctx, tx, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete product", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) RecordView(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) (*product.Product, error) {
	row, err := r.queries.IncrementProductViews(ctx, tx, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to record product view", err)
	}
	return converter.ProductFromInfra(row)
}

func (r *ProductRepository) RecordClick(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) (string, error) {
	link, err := r.queries.IncrementProductClicks(ctx, tx, id)
	if err != nil {
		return "", infra.WrapRepoErr("failed to record product click", err)
	}
	return link, nil
}

// LockForAging returns products whose freshness is due to change, locked
// for the rest of the transaction.
func (r *ProductRepository) LockForAging(ctx context.Context, tx sqlstore.DBTX, staleBefore, archiveBefore time.Time, limit int32) ([]*product.Product, error) {
	rows, err := r.queries.ListProductsForAging(ctx, tx, sqlstore.ListProductsForAgingParams{
		StaleBefore:   pgconv.TimeToPgtype(staleBefore),
		ArchiveBefore: pgconv.TimeToPgtype(archiveBefore),
		Limit:         limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products for aging", err)
	}
	return converter.ProductsFromInfra(rows)
}

func (r *ProductRepository) SaveFreshness(ctx context.Context, tx sqlstore.DBTX, p *product.Product) error {
	err := r.queries.SetProductFreshness(ctx, tx, sqlstore.SetProductFreshnessParams{
		ID:        p.ID(),
		Freshness: p.Freshness().String(),
		UpdatedAt: pgtype.Timestamptz{Time: p.UpdatedAt(), Valid: true},
	})
	if err != nil {
		return infra.WrapRepoErr("failed to set product freshness", err)
	}
	return nil
}
