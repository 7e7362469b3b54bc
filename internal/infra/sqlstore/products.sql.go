package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, title, description, category, tags, price, original_price, discount,
	platform, affiliate_link, image_url, asin, strategy, freshness, last_priced_at,
	admin_notes, views, clicks, conversions, created_by, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Products, error) {
	var i Products
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Category,
		&i.Tags,
		&i.Price,
		&i.OriginalPrice,
		&i.Discount,
		&i.Platform,
		&i.AffiliateLink,
		&i.ImageUrl,
		&i.Asin,
		&i.Strategy,
		&i.Freshness,
		&i.LastPricedAt,
		&i.AdminNotes,
		&i.Views,
		&i.Clicks,
		&i.Conversions,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectProducts(rows pgx.Rows, err error) ([]Products, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Products
	for rows.Next() {
		i, err := scanProduct(rows)
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

const createProduct = `
INSERT INTO products (
	id, title, description, category, tags, price, original_price, discount,
	platform, affiliate_link, image_url, asin, strategy, freshness, last_priced_at,
	admin_notes, views, clicks, conversions, created_by, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	$16, $17, $18, $19, $20, $21, $22
)`

type CreateProductParams = Products

func (q *Queries) CreateProduct(ctx context.Context, db DBTX, arg CreateProductParams) error {
	_, err := db.Exec(ctx, createProduct,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.Category,
		arg.Tags,
		arg.Price,
		arg.OriginalPrice,
		arg.Discount,
		arg.Platform,
		arg.AffiliateLink,
		arg.ImageUrl,
		arg.Asin,
		arg.Strategy,
		arg.Freshness,
		arg.LastPricedAt,
		arg.AdminNotes,
		arg.Views,
		arg.Clicks,
		arg.Conversions,
		arg.CreatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateProduct = `
UPDATE products SET
	title = $2,
	description = $3,
	category = $4,
	tags = $5,
	price = $6,
	original_price = $7,
	discount = $8,
	platform = $9,
	affiliate_link = $10,
	image_url = $11,
	asin = $12,
	strategy = $13,
	freshness = $14,
	last_priced_at = $15,
	admin_notes = $16,
	updated_at = $17
WHERE id = $1`

type UpdateProductParams = Products

func (q *Queries) UpdateProduct(ctx context.Context, db DBTX, arg UpdateProductParams) (int64, error) {
	tag, err := db.Exec(ctx, updateProduct,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.Category,
		arg.Tags,
		arg.Price,
		arg.OriginalPrice,
		arg.Discount,
		arg.Platform,
		arg.AffiliateLink,
		arg.ImageUrl,
		arg.Asin,
		arg.Strategy,
		arg.Freshness,
		arg.LastPricedAt,
		arg.AdminNotes,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteProduct = `DELETE FROM products WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, db DBTX, id uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getProductByID = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

func (q *Queries) GetProductByID(ctx context.Context, db DBTX, id uuid.UUID) (Products, error) {
	return scanProduct(db.QueryRow(ctx, getProductByID, id))
}

const getProductForUpdate = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

func (q *Queries) GetProductForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (Products, error) {
	return scanProduct(db.QueryRow(ctx, getProductForUpdate, id))
}

const getProductsByIDs = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC, id DESC`

func (q *Queries) GetProductsByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) ([]Products, error) {
	return collectProducts(db.Query(ctx, getProductsByIDs, ids))
}

const listFreshProducts = `
SELECT ` + productColumns + ` FROM products
WHERE freshness = 'FRESH'
  AND ($1::text IS NULL OR category ILIKE '%' || $1 || '%')
  AND ($2::bigint IS NULL OR price >= $2)
  AND ($3::bigint IS NULL OR price <= $3)
  AND ($4::text IS NULL OR platform = $4)
  AND ($5::text IS NULL
       OR title ILIKE '%' || $5 || '%'
       OR description ILIKE '%' || $5 || '%'
       OR lower($5) = ANY(tags))
  AND ($6::timestamptz IS NULL OR (created_at, id) < ($6, $7::uuid))
ORDER BY created_at DESC, id DESC
LIMIT $8`

type ListFreshProductsParams struct {
	Category       pgtype.Text        `json:"category"`
	MinPrice       pgtype.Int8        `json:"min_price"`
	MaxPrice       pgtype.Int8        `json:"max_price"`
	Platform       pgtype.Text        `json:"platform"`
	Search         pgtype.Text        `json:"search"`
	AfterCreatedAt pgtype.Timestamptz `json:"after_created_at"`
	AfterID        pgtype.UUID        `json:"after_id"`
	Limit          int32              `json:"limit"`
}

func (q *Queries) ListFreshProducts(ctx context.Context, db DBTX, arg ListFreshProductsParams) ([]Products, error) {
	return collectProducts(db.Query(ctx, listFreshProducts,
		arg.Category,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Platform,
		arg.Search,
		arg.AfterCreatedAt,
		arg.AfterID,
		arg.Limit,
	))
}

// Category containment is checked in both directions so "laptop" and
// "Laptops" select each other. position() keeps % and _ literal.
const findCandidateProducts = `
SELECT ` + productColumns + ` FROM products
WHERE freshness = 'FRESH'
  AND ($1::text IS NULL
       OR position(lower($1) in lower(category)) > 0
       OR position(lower(category) in lower($1)) > 0)
  AND price >= $2
  AND ($3::bigint IS NULL OR price <= $3)
  AND (cardinality($4::text[]) = 0 OR platform = ANY($4::text[]))
  AND NOT (id = ANY($5::uuid[]))
ORDER BY created_at DESC, id DESC
LIMIT $6`

type FindCandidateProductsParams struct {
	Category   pgtype.Text `json:"category"`
	MinPrice   int64       `json:"min_price"`
	MaxPrice   pgtype.Int8 `json:"max_price"`
	Platforms  []string    `json:"platforms"`
	ExcludeIDs []uuid.UUID `json:"exclude_ids"`
	Limit      int32       `json:"limit"`
}

func (q *Queries) FindCandidateProducts(ctx context.Context, db DBTX, arg FindCandidateProductsParams) ([]Products, error) {
	platforms := arg.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	exclude := arg.ExcludeIDs
	if exclude == nil {
		exclude = []uuid.UUID{}
	}
	return collectProducts(db.Query(ctx, findCandidateProducts,
		arg.Category,
		arg.MinPrice,
		arg.MaxPrice,
		platforms,
		exclude,
		arg.Limit,
	))
}

const incrementProductViews = `UPDATE products SET views = views + 1 WHERE id = $1 RETURNING ` + productColumns

func (q *Queries) IncrementProductViews(ctx context.Context, db DBTX, id uuid.UUID) (Products, error) {
	return scanProduct(db.QueryRow(ctx, incrementProductViews, id))
}

const incrementProductClicks = `UPDATE products SET clicks = clicks + 1 WHERE id = $1 RETURNING affiliate_link`

func (q *Queries) IncrementProductClicks(ctx context.Context, db DBTX, id uuid.UUID) (string, error) {
	var link string
	err := db.QueryRow(ctx, incrementProductClicks, id).Scan(&link)
	return link, err
}

const getProductStatsByPlatform = `
SELECT platform,
       count(*)::bigint AS total,
       count(*) FILTER (WHERE freshness = 'FRESH')::bigint AS fresh,
       COALESCE(avg(price), 0)::float8 AS avg_price,
       COALESCE(sum(views), 0)::bigint AS views,
       COALESCE(sum(clicks), 0)::bigint AS clicks
FROM products
GROUP BY platform
ORDER BY platform`

type GetProductStatsByPlatformRow struct {
	Platform string  `json:"platform"`
	Total    int64   `json:"total"`
	Fresh    int64   `json:"fresh"`
	AvgPrice float64 `json:"avg_price"`
	Views    int64   `json:"views"`
	Clicks   int64   `json:"clicks"`
}

func (q *Queries) GetProductStatsByPlatform(ctx context.Context, db DBTX) ([]GetProductStatsByPlatformRow, error) {
	rows, err := db.Query(ctx, getProductStatsByPlatform)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetProductStatsByPlatformRow
	for rows.Next() {
		var i GetProductStatsByPlatformRow
		if err := rows.Scan(&i.Platform, &i.Total, &i.Fresh, &i.AvgPrice, &i.Views, &i.Clicks); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Only rows that would change state are selected, so a caller can loop
// until a short page without revisiting the same products.
const listProductsForAging = `
SELECT ` + productColumns + ` FROM products
WHERE (freshness = 'FRESH' AND last_priced_at <= $1)
   OR (freshness = 'STALE' AND last_priced_at <= $2)
ORDER BY last_priced_at, id
LIMIT $3
FOR UPDATE SKIP LOCKED`

type ListProductsForAgingParams struct {
	StaleBefore   pgtype.Timestamptz `json:"stale_before"`
	ArchiveBefore pgtype.Timestamptz `json:"archive_before"`
	Limit         int32              `json:"limit"`
}

func (q *Queries) ListProductsForAging(ctx context.Context, db DBTX, arg ListProductsForAgingParams) ([]Products, error) {
	return collectProducts(db.Query(ctx, listProductsForAging, arg.StaleBefore, arg.ArchiveBefore, arg.Limit))
}

const setProductFreshness = `UPDATE products SET freshness = $2, updated_at = $3 WHERE id = $1`

type SetProductFreshnessParams struct {
	ID        uuid.UUID          `json:"id"`
	Freshness string             `json:"freshness"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) SetProductFreshness(ctx context.Context, db DBTX, arg SetProductFreshnessParams) error {
	_, err := db.Exec(ctx, setProductFreshness, arg.ID, arg.Freshness, arg.UpdatedAt)
	return err
}
