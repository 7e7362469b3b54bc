//go:build unit || e2e

package builder

import (
	"time"

	"affiliate-notify/internal/domain/marketplace"
	"affiliate-notify/internal/domain/product"
	reqdto "affiliate-notify/internal/handler/dto/request"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var BaseTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type ProductBuilder struct {
	ID            uuid.UUID
	Title         string
	Description   string
	Category      string
	Tags          []string
	Price         int64
	OriginalPrice *int64
	Platform      marketplace.Platform
	AffiliateLink string
	ImageURL      string
	ASIN          string
	Freshness     product.Freshness
	LastPricedAt  time.Time
	AdminNotes    string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:            uuid.New(),
		Title:         "Acer Nitro 5 Gaming Laptop",
		Description:   "RTX 3050, 16GB RAM",
		Category:      "Laptops",
		Tags:          []string{"gaming", "16gb"},
		Price:         65000,
		Platform:      marketplace.Amazon,
		AffiliateLink: "https://www.amazon.in/dp/B0ABCDEFGH?tag=aff-21",
		ImageURL:      "https://img.example.com/nitro.jpg",
		ASIN:          "B0ABCDEFGH",
		Freshness:     product.FreshnessFresh,
		LastPricedAt:  BaseTime,
		CreatedAt:     BaseTime,
	}
}

func (b *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(b)
	return b
}

func (b *ProductBuilder) BuildDetails() product.Details {
	return product.Details{
		Title:         b.Title,
		Description:   b.Description,
		Category:      b.Category,
		Tags:          b.Tags,
		Price:         b.Price,
		OriginalPrice: b.OriginalPrice,
		Platform:      b.Platform,
		AffiliateLink: b.AffiliateLink,
		ImageURL:      b.ImageURL,
		ASIN:          b.ASIN,
		AdminNotes:    b.AdminNotes,
	}
}

// BuildDomain reconstructs the product as if loaded from storage, keeping
// the builder's id, freshness and timestamps.
func (b *ProductBuilder) BuildDomain() *product.Product {
	title, err := product.NewTitle(b.Title)
	if err != nil {
		panic(err)
	}
	pricing, err := product.NewPricing(b.Price, b.OriginalPrice, nil)
	if err != nil {
		panic(err)
	}
	return product.ReconstructProduct(
		b.ID, title, b.Description, b.Category, b.Tags, pricing,
		b.Platform, b.AffiliateLink, b.ImageURL, b.ASIN,
		marketplace.StrategyFor(b.Platform), b.Freshness, b.LastPricedAt,
		b.AdminNotes, 0, 0, 0, b.CreatedBy, b.CreatedAt, b.CreatedAt,
	)
}

func (b *ProductBuilder) BuildCreateDTO() reqdto.CreateProductRequest {
	return reqdto.CreateProductRequest{
		Title:         b.Title,
		Description:   b.Description,
		Category:      b.Category,
		Tags:          b.Tags,
		Price:         b.Price,
		OriginalPrice: b.OriginalPrice,
		Platform:      b.Platform.String(),
		AffiliateLink: b.AffiliateLink,
		ImageURL:      b.ImageURL,
		ASIN:          b.ASIN,
		AdminNotes:    b.AdminNotes,
	}
}

func (b *ProductBuilder) BuildView() *queries.ProductView {
	return &queries.ProductView{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		Category:      b.Category,
		Tags:          b.Tags,
		Price:         b.Price,
		OriginalPrice: b.OriginalPrice,
		Platform:      b.Platform.String(),
		AffiliateLink: b.AffiliateLink,
		ImageURL:      b.ImageURL,
		ASIN:          b.ASIN,
		Strategy:      marketplace.StrategyFor(b.Platform).String(),
		Freshness:     b.Freshness.String(),
		LastPricedAt:  b.LastPricedAt,
		AdminNotes:    b.AdminNotes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.CreatedAt,
	}
}

func (b *ProductBuilder) BuildInfra() sqlstore.Products {
	row := sqlstore.Products{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		Category:      b.Category,
		Tags:          b.Tags,
		Price:         b.Price,
		Platform:      b.Platform.String(),
		AffiliateLink: b.AffiliateLink,
		ImageUrl:      b.ImageURL,
		Strategy:      marketplace.StrategyFor(b.Platform).String(),
		Freshness:     b.Freshness.String(),
		LastPricedAt:  pgtype.Timestamptz{Time: b.LastPricedAt, Valid: true},
		AdminNotes:    b.AdminNotes,
		CreatedAt:     pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:     pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
	}
	if b.OriginalPrice != nil {
		row.OriginalPrice = pgtype.Int8{Int64: *b.OriginalPrice, Valid: true}
	}
	if b.ASIN != "" {
		row.Asin = pgtype.Text{String: b.ASIN, Valid: true}
	}
	if b.CreatedBy != nil {
		row.CreatedBy = pgtype.UUID{Bytes: *b.CreatedBy, Valid: true}
	}
	return row
}

func (b *ProductBuilder) AsStale() *ProductBuilder {
	b.Freshness = product.FreshnessStale
	return b
}

func (b *ProductBuilder) AsArchived() *ProductBuilder {
	b.Freshness = product.FreshnessArchived
	return b
}
