package response

import (
	"time"

	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// ProductResponse is the public shape of a catalog entry. Curator notes
// are only included for curators and admins.
type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"original_price,omitempty"`
	Discount      int       `json:"discount"`
	Platform      string    `json:"platform"`
	AffiliateLink string    `json:"affiliate_link"`
	ImageURL      string    `json:"image_url,omitempty"`
	ASIN          string    `json:"asin,omitempty"`
	Freshness     string    `json:"freshness"`
	LastPricedAt  time.Time `json:"last_priced_at"`
	Views         int64     `json:"views"`
	Clicks        int64     `json:"clicks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CuratedProductResponse struct {
	ProductResponse
	Strategy    string `json:"strategy"`
	AdminNotes  string `json:"admin_notes"`
	Conversions int64  `json:"conversions"`
}

type ProductListResponse struct {
	Items      []*ProductResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type ProductWriteResponse struct {
	Product *CuratedProductResponse `json:"product"`
	Match   MatchSummary            `json:"match"`
}

type MatchSummary struct {
	Claimed   int `json:"claimed"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

type ClickResponse struct {
	RedirectURL string `json:"redirect_url"`
}

func FromMatchResult(r commands.MatchResult) MatchSummary {
	return MatchSummary{Claimed: r.Claimed, Delivered: r.Delivered, Failed: r.Failed}
}

func FromProductView(v *queries.ProductView) *ProductResponse {
	var out ProductResponse
	_ = copier.Copy(&out, v)
	return &out
}

func FromCuratedProductView(v *queries.ProductView) *CuratedProductResponse {
	out := &CuratedProductResponse{
		ProductResponse: *FromProductView(v),
		Strategy:        v.Strategy,
		AdminNotes:      v.AdminNotes,
		Conversions:     v.Conversions,
	}
	return out
}

func FromProductList(items []*queries.ProductView, next *queries.Cursor) *ProductListResponse {
	out := &ProductListResponse{Items: make([]*ProductResponse, len(items))}
	for i, it := range items {
		out.Items[i] = FromProductView(it)
	}
	if next != nil {
		out.NextCursor = next.After
	}
	return out
}
