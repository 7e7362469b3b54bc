package response

import (
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type RequestResponse struct {
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

type RequestDetailResponse struct {
	Request         *RequestResponse   `json:"request"`
	MatchedProducts []*ProductResponse `json:"matched_products"`
}

type SubmitResponse struct {
	Request *RequestResponse `json:"request"`
	Match   MatchSummary     `json:"match"`
}

type RequestListResponse struct {
	Items      []*RequestResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type DeleteCountResponse struct {
	Deleted int64 `json:"deleted"`
}

func FromRequestView(v *queries.RequestView) *RequestResponse {
	var out RequestResponse
	_ = copier.CopyWithOption(&out, v, copier.Option{DeepCopy: true})
	return &out
}

func FromRequestDetail(d *queries.RequestDetail) *RequestDetailResponse {
	out := &RequestDetailResponse{
		Request:         FromRequestView(d.Request),
		MatchedProducts: make([]*ProductResponse, len(d.MatchedProducts)),
	}
	for i, p := range d.MatchedProducts {
		out.MatchedProducts[i] = FromProductView(p)
	}
	return out
}

func FromRequestList(items []*queries.RequestView, next *queries.Cursor) *RequestListResponse {
	out := &RequestListResponse{Items: make([]*RequestResponse, len(items))}
	for i, it := range items {
		out.Items[i] = FromRequestView(it)
	}
	if next != nil {
		out.NextCursor = next.After
	}
	return out
}
