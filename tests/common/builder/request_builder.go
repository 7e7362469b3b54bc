//go:build unit || e2e

package builder

import (
	"encoding/json"
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type RequestBuilder struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	UserEmail     string
	Query         string
	Status        request.Status
	Matched       []uuid.UUID
	Notifications []request.Notification
	FulfilledAt   *time.Time
	ExpiresAt     time.Time
	Version       int32
	CreatedAt     time.Time
}

func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		UserEmail:     "shopper@example.com",
		Query:         "gaming laptop under 80000 from amazon",
		Status:        request.StatusActive,
		Matched:       []uuid.UUID{},
		Notifications: []request.Notification{},
		ExpiresAt:     BaseTime.Add(30 * 24 * time.Hour),
		CreatedAt:     BaseTime,
	}
}

func (b *RequestBuilder) With(mutate func(*RequestBuilder)) *RequestBuilder {
	mutate(b)
	return b
}

func (b *RequestBuilder) Intent() intent.ParsedIntent {
	return intent.Parse(b.Query)
}

func (b *RequestBuilder) BuildDomain() *request.Request {
	return request.ReconstructRequest(
		b.ID, b.UserID, b.UserEmail, b.Query, b.Intent(), b.Status,
		append([]uuid.UUID{}, b.Matched...),
		append([]request.Notification{}, b.Notifications...),
		b.FulfilledAt, b.ExpiresAt, b.Version, b.CreatedAt, b.CreatedAt,
	)
}

func (b *RequestBuilder) BuildView() *queries.RequestView {
	return &queries.RequestView{
		ID:                b.ID,
		UserID:            b.UserID,
		UserEmail:         b.UserEmail,
		Query:             b.Query,
		Intent:            b.Intent(),
		Status:            b.Status.String(),
		MatchedProductIDs: b.Matched,
		Notifications:     b.Notifications,
		FulfilledAt:       b.FulfilledAt,
		ExpiresAt:         b.ExpiresAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.CreatedAt,
	}
}

func (b *RequestBuilder) BuildInfra() sqlstore.ShoppingRequests {
	parsed := b.Intent()
	intentJSON, _ := json.Marshal(parsed)
	notificationsJSON, _ := json.Marshal(b.Notifications)
	row := sqlstore.ShoppingRequests{
		ID:                b.ID,
		UserID:            b.UserID,
		UserEmail:         b.UserEmail,
		Query:             b.Query,
		Intent:            intentJSON,
		Status:            b.Status.String(),
		MatchedProductIds: b.Matched,
		Notifications:     notificationsJSON,
		ExpiresAt:         pgtype.Timestamptz{Time: b.ExpiresAt, Valid: true},
		Version:           b.Version,
		CreatedAt:         pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
		UpdatedAt:         pgtype.Timestamptz{Time: b.CreatedAt, Valid: true},
	}
	if parsed.Category != nil {
		row.Category = pgtype.Text{String: *parsed.Category, Valid: true}
	}
	if b.FulfilledAt != nil {
		row.FulfilledAt = pgtype.Timestamptz{Time: *b.FulfilledAt, Valid: true}
	}
	return row
}

func (b *RequestBuilder) WithStatus(s request.Status) *RequestBuilder {
	b.Status = s
	return b
}
