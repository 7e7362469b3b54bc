package sqlstore

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Users struct {
	ID           uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"password_hash"`
	Role         string             `json:"role"`
	IsActive     bool               `json:"is_active"`
	LastLogin    pgtype.Timestamptz `json:"last_login"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type Products struct {
	ID            uuid.UUID          `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	Tags          []string           `json:"tags"`
	Price         int64              `json:"price"`
	OriginalPrice pgtype.Int8        `json:"original_price"`
	Discount      int32              `json:"discount"`
	Platform      string             `json:"platform"`
	AffiliateLink string             `json:"affiliate_link"`
	ImageUrl      string             `json:"image_url"`
	Asin          pgtype.Text        `json:"asin"`
	Strategy      string             `json:"strategy"`
	Freshness     string             `json:"freshness"`
	LastPricedAt  pgtype.Timestamptz `json:"last_priced_at"`
	AdminNotes    string             `json:"admin_notes"`
	Views         int64              `json:"views"`
	Clicks        int64              `json:"clicks"`
	Conversions   int64              `json:"conversions"`
	CreatedBy     pgtype.UUID        `json:"created_by"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type ShoppingRequests struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"user_id"`
	UserEmail         string             `json:"user_email"`
	Query             string             `json:"query"`
	Intent            []byte             `json:"intent"`
	Category          pgtype.Text        `json:"category"`
	Status            string             `json:"status"`
	MatchedProductIds []uuid.UUID        `json:"matched_product_ids"`
	Notifications     []byte             `json:"notifications"`
	FulfilledAt       pgtype.Timestamptz `json:"fulfilled_at"`
	ExpiresAt         pgtype.Timestamptz `json:"expires_at"`
	Version           int32              `json:"version"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

type NotificationJobs struct {
	ID        uuid.UUID          `json:"id"`
	Kind      string             `json:"kind"`
	Topic     string             `json:"topic"`
	Key       string             `json:"key"`
	Payload   []byte             `json:"payload"`
	Status    string             `json:"status"`
	Attempts  int32              `json:"attempts"`
	RunAt     pgtype.Timestamptz `json:"run_at"`
	LastError pgtype.Text        `json:"last_error"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type IdempotencyKeys struct {
	Key             uuid.UUID          `json:"key"`
	UserID          uuid.UUID          `json:"user_id"`
	Endpoint        string             `json:"endpoint"`
	RequestHash     string             `json:"request_hash"`
	Status          string             `json:"status"`
	ResultRequestID pgtype.UUID        `json:"result_request_id"`
	ExpiresAt       pgtype.Timestamptz `json:"expires_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}
