package converter

import (
	"affiliate-notify/internal/domain/marketplace"
	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/pgconv"
	"affiliate-notify/internal/pkg/ptr"
)

func ProductToInfra(p *product.Product) sqlstore.Products {
	pricing := p.Pricing()
	tags := p.Tags()
	if tags == nil {
		tags = []string{}
	}
	return sqlstore.Products{
		ID:            p.ID(),
		Title:         p.Title().String(),
		Description:   p.Description(),
		Category:      p.Category(),
		Tags:          tags,
		Price:         pricing.Price(),
		OriginalPrice: pgconv.Int8PtrToPgtype(pricing.OriginalPrice()),
		Discount:      int32(pricing.DiscountPercent()), // #nosec G115 -- bounded to 0..100 by NewPricing
		Platform:      p.Platform().String(),
		AffiliateLink: p.AffiliateLink(),
		ImageUrl:      p.ImageURL(),
		Asin:          pgconv.StringPtrToPgtype(ptr.NilIfZero(p.ASIN())),
		Strategy:      p.Strategy().String(),
		Freshness:     p.Freshness().String(),
		LastPricedAt:  pgconv.TimeToPgtype(p.LastPricedAt()),
		AdminNotes:    p.AdminNotes(),
		Views:         p.Views(),
		Clicks:        p.Clicks(),
		Conversions:   p.Conversions(),
		CreatedBy:     pgconv.UUIDPtrToPgtype(p.CreatedBy()),
		CreatedAt:     pgconv.TimeToPgtype(p.CreatedAt()),
		UpdatedAt:     pgconv.TimeToPgtype(p.UpdatedAt()),
	}
}

func ProductFromInfra(row sqlstore.Products) (*product.Product, error) {
	title, err := product.NewTitle(row.Title)
	if err != nil {
		return nil, err
	}
	discount := int(row.Discount)
	pricing, err := product.NewPricing(row.Price, pgconv.Int8PtrFromPgtype(row.OriginalPrice), &discount)
	if err != nil {
		return nil, err
	}
	freshness, err := product.NewFreshness(row.Freshness)
	if err != nil {
		return nil, err
	}
	platform, err := marketplace.ParsePlatform(row.Platform)
	if err != nil {
		return nil, err
	}

	return product.ReconstructProduct(
		row.ID,
		title,
		row.Description,
		row.Category,
		row.Tags,
		pricing,
		platform,
		row.AffiliateLink,
		row.ImageUrl,
		pgconv.StringFromPgtype(row.Asin),
		marketplace.SourceStrategy(row.Strategy),
		freshness,
		pgconv.TimeFromPgtype(row.LastPricedAt),
		row.AdminNotes,
		row.Views,
		row.Clicks,
		row.Conversions,
		pgconv.UUIDPtrFromPgtype(row.CreatedBy),
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	), nil
}

func ProductsFromInfra(rows []sqlstore.Products) ([]*product.Product, error) {
	items := make([]*product.Product, 0, len(rows))
	for _, row := range rows {
		p, err := ProductFromInfra(row)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}
