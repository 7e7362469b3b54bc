package queries

import (
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/request"

	"github.com/google/uuid"
)

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CurrentUserView is the signed-in user together with a summary of their
// shopping requests.
type CurrentUserView struct {
	*AuthorizedUserView
	OpenRequests      int64 `json:"open_requests"`
	FulfilledRequests int64 `json:"fulfilled_requests"`
}

// ProductView represents a catalog entry as shown to shoppers and curators
type ProductView struct {
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
	ImageURL      string    `json:"image_url"`
	ASIN          string    `json:"asin,omitempty"`
	Strategy      string    `json:"strategy"`
	Freshness     string    `json:"freshness"`
	LastPricedAt  time.Time `json:"last_priced_at"`
	AdminNotes    string    `json:"admin_notes,omitempty"`
	Views         int64     `json:"views"`
	Clicks        int64     `json:"clicks"`
	Conversions   int64     `json:"conversions"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductFilters struct {
	Category *string
	MinPrice *int64
	MaxPrice *int64
	Platform *string
	Search   *string
}

type PlatformStats struct {
	Platform string  `json:"platform"`
	Total    int64   `json:"total"`
	Fresh    int64   `json:"fresh"`
	AvgPrice float64 `json:"avg_price"`
	Views    int64   `json:"views"`
	Clicks   int64   `json:"clicks"`
}

// RequestView represents a stored shopping request together with its parsed intent
type RequestView struct {
	ID                uuid.UUID              `json:"id"`
	UserID            uuid.UUID              `json:"user_id"`
	UserEmail         string                 `json:"user_email"`
	Query             string                 `json:"query"`
	Intent            intent.ParsedIntent    `json:"intent"`
	Status            string                 `json:"status"`
	MatchedProductIDs []uuid.UUID            `json:"matched_product_ids"`
	Notifications     []request.Notification `json:"notifications"`
	FulfilledAt       *time.Time             `json:"fulfilled_at,omitempty"`
	ExpiresAt         time.Time              `json:"expires_at"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

type RequestDetail struct {
	Request         *RequestView   `json:"request"`
	MatchedProducts []*ProductView `json:"matched_products"`
}

type RequestFilters struct {
	UserID *uuid.UUID
	Status *string
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type RequestStats struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"by_status"`
	TopCategories []CategoryCount  `json:"top_categories"`
}
