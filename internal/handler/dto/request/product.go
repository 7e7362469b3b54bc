package request

import (
	"affiliate-notify/internal/domain/marketplace"
	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/pkg/patch"
	"affiliate-notify/internal/pkg/ptr"
	"affiliate-notify/internal/usecase/queries"
)

type CreateProductRequest struct {
	Title         string   `json:"title" binding:"required,max=200"`
	Description   string   `json:"description" binding:"max=2000"`
	Category      string   `json:"category" binding:"required,max=100"`
	Tags          []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Price         int64    `json:"price" binding:"required,gt=0"`
	OriginalPrice *int64   `json:"original_price" binding:"omitempty,gt=0"`
	Discount      *int     `json:"discount" binding:"omitempty,min=0,max=100"`
	Platform      string   `json:"platform" binding:"omitempty,platform"`
	AffiliateLink string   `json:"affiliate_link" binding:"required,url"`
	ImageURL      string   `json:"image_url" binding:"omitempty,url"`
	ASIN          string   `json:"asin" binding:"omitempty,len=10,alphanum"`
	AdminNotes    string   `json:"admin_notes" binding:"max=1000"`
}

func (r *CreateProductRequest) ToDomain() (product.Details, error) {
	platform, err := optionalPlatform(r.Platform)
	if err != nil {
		return product.Details{}, err
	}
	return product.Details{
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Tags:          r.Tags,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Discount:      r.Discount,
		Platform:      platform,
		AffiliateLink: r.AffiliateLink,
		ImageURL:      r.ImageURL,
		ASIN:          r.ASIN,
		AdminNotes:    r.AdminNotes,
	}, nil
}

// UpdateProductRequest is a partial update; omitted fields keep their
// current value.
type UpdateProductRequest struct {
	Title         *string  `json:"title" binding:"omitempty,max=200"`
	Description   *string  `json:"description" binding:"omitempty,max=2000"`
	Category      *string  `json:"category" binding:"omitempty,max=100"`
	Tags          []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Price         *int64   `json:"price" binding:"omitempty,gt=0"`
	OriginalPrice *int64   `json:"original_price" binding:"omitempty,gt=0"`
	Discount      *int     `json:"discount" binding:"omitempty,min=0,max=100"`
	Platform      *string  `json:"platform" binding:"omitempty,platform"`
	AffiliateLink *string  `json:"affiliate_link" binding:"omitempty,url"`
	ImageURL      *string  `json:"image_url" binding:"omitempty,url"`
	ASIN          *string  `json:"asin" binding:"omitempty,len=10,alphanum"`
	AdminNotes    *string  `json:"admin_notes" binding:"omitempty,max=1000"`
}

func (r *UpdateProductRequest) ToDomain(existing *product.Product) (product.Details, error) {
	platform := existing.Platform()
	if r.Platform != nil {
		p, err := marketplace.ParsePlatform(*r.Platform)
		if err != nil {
			return product.Details{}, err
		}
		platform = p
	}

	// A new price without a new discount recomputes the discount.
	discount := r.Discount
	if discount == nil && r.Price == nil && r.OriginalPrice == nil {
		discount = ptr.Of(existing.Pricing().DiscountPercent())
	}

	return product.Details{
		Title:         patch.Coalesce(r.Title, existing.Title().String()),
		Description:   patch.Coalesce(r.Description, existing.Description()),
		Category:      patch.Coalesce(r.Category, existing.Category()),
		Tags:          patch.CoalesceSlice(r.Tags, existing.Tags()),
		Price:         patch.Coalesce(r.Price, existing.Price()),
		OriginalPrice: patch.CoalescePtr(r.OriginalPrice, existing.Pricing().OriginalPrice()),
		Discount:      discount,
		Platform:      platform,
		AffiliateLink: patch.Coalesce(r.AffiliateLink, existing.AffiliateLink()),
		ImageURL:      patch.Coalesce(r.ImageURL, existing.ImageURL()),
		ASIN:          patch.Coalesce(r.ASIN, existing.ASIN()),
		AdminNotes:    patch.Coalesce(r.AdminNotes, existing.AdminNotes()),
	}, nil
}

// ListProductsQuery is bound from the catalog listing query string.
type ListProductsQuery struct {
	Category string `form:"category" binding:"max=100"`
	MinPrice *int64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *int64 `form:"max_price" binding:"omitempty,min=0"`
	Platform string `form:"platform" binding:"omitempty,platform"`
	Search   string `form:"search" binding:"max=200"`
	Cursor   string `form:"cursor"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (q *ListProductsQuery) Filters() queries.ProductFilters {
	f := queries.ProductFilters{
		Category: ptr.NilIfZero(q.Category),
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Search:   ptr.NilIfZero(q.Search),
	}
	if p, err := marketplace.ParsePlatform(q.Platform); err == nil {
		s := p.String()
		f.Platform = &s
	}
	return f
}

func optionalPlatform(s string) (marketplace.Platform, error) {
	if s == "" {
		return "", nil
	}
	return marketplace.ParsePlatform(s)
}
