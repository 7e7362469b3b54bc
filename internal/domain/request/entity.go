package request

import (
	"errors"
	"strings"
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/product"

	"github.com/google/uuid"
)

const MaxQueryLength = 1000

var (
	ErrEmptyQuery       = errors.New("query is required")
	ErrQueryTooLong     = errors.New("query is too long")
	ErrInvalidStatus    = errors.New("invalid request status")
	ErrRequestClosed    = errors.New("request is no longer active")
	ErrInvalidTTL       = errors.New("request ttl must be positive")
	ErrInvalidThreshold = errors.New("fulfillment threshold must be positive")
)

// Notification records one delivery attempt for a matched product.
type Notification struct {
	ProductID uuid.UUID `json:"productId"`
	SentAt    time.Time `json:"sentAt"`
	Delivered bool      `json:"delivered"`
}

type Request struct {
	id                uuid.UUID
	userID            uuid.UUID
	userEmail         string
	query             string
	intent            intent.ParsedIntent
	status            Status
	matchedProductIDs []uuid.UUID
	notifications     []Notification
	fulfilledAt       *time.Time
	expiresAt         time.Time
	version           int32
	createdAt         time.Time
	updatedAt         time.Time
}

// NewRequest stores the raw text together with its parsed intent. An empty
// intent is valid; such a request simply never matches.
func NewRequest(userID uuid.UUID, userEmail, query string, parsed intent.ParsedIntent, now time.Time, ttl time.Duration) (*Request, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if len(q) > MaxQueryLength {
		return nil, ErrQueryTooLong
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Request{
		id:                uuid.New(),
		userID:            userID,
		userEmail:         strings.TrimSpace(userEmail),
		query:             q,
		intent:            parsed,
		status:            StatusActive,
		matchedProductIDs: []uuid.UUID{},
		notifications:     []Notification{},
		expiresAt:         now.Add(ttl),
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructRequest(
	id, userID uuid.UUID,
	userEmail, query string,
	parsed intent.ParsedIntent,
	status Status,
	matchedProductIDs []uuid.UUID,
	notifications []Notification,
	fulfilledAt *time.Time,
	expiresAt time.Time,
	version int32,
	createdAt, updatedAt time.Time,
) *Request {
	if matchedProductIDs == nil {
		matchedProductIDs = []uuid.UUID{}
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	return &Request{
		id:                id,
		userID:            userID,
		userEmail:         userEmail,
		query:             query,
		intent:            parsed,
		status:            status,
		matchedProductIDs: matchedProductIDs,
		notifications:     notifications,
		fulfilledAt:       fulfilledAt,
		expiresAt:         expiresAt,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (r *Request) Open() bool {
	return r.status == StatusActive
}

func (r *Request) HasMatched(productID uuid.UUID) bool {
	for _, id := range r.matchedProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// RecordMatch appends productID to the matched list. A product already
// recorded is ignored. Reaching threshold distinct matches fulfills the
// request, after which no further matches are accepted.
func (r *Request) RecordMatch(productID uuid.UUID, now time.Time, threshold int) (bool, error) {
	if threshold < 1 {
		return false, ErrInvalidThreshold
	}
	if r.HasMatched(productID) {
		return false, nil
	}
	if !r.Open() {
		return false, ErrRequestClosed
	}
	r.matchedProductIDs = append(r.matchedProductIDs, productID)
	r.updatedAt = now
	r.settle(now, threshold)
	return true, nil
}

// ClaimMatches records every satisfying candidate not yet matched, up to
// limit, and only then checks the threshold. A request fulfilled here still
// gets all of this batch; later runs see it closed. It returns the products
// claimed by this call in candidate order.
func (r *Request) ClaimMatches(candidates []*product.Product, now time.Time, threshold, limit int) ([]*product.Product, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}
	if !r.Open() {
		return nil, nil
	}
	var claimed []*product.Product
	for _, p := range candidates {
		if limit > 0 && len(claimed) >= limit {
			break
		}
		if r.HasMatched(p.ID()) || !Satisfies(r.intent, p) {
			continue
		}
		r.matchedProductIDs = append(r.matchedProductIDs, p.ID())
		claimed = append(claimed, p)
	}
	if len(claimed) > 0 {
		r.updatedAt = now
		r.settle(now, threshold)
	}
	return claimed, nil
}

func (r *Request) settle(now time.Time, threshold int) {
	if len(r.matchedProductIDs) < threshold {
		return
	}
	r.status = StatusFulfilled
	t := now
	r.fulfilledAt = &t
}

// AppendNotification is allowed after fulfillment: the delivery outcome of
// the final match is written once the claim has been persisted.
func (r *Request) AppendNotification(n Notification) {
	r.notifications = append(r.notifications, n)
	if n.SentAt.After(r.updatedAt) {
		r.updatedAt = n.SentAt
	}
}

func (r *Request) Cancel(now time.Time) error {
	if !r.Open() {
		return ErrRequestClosed
	}
	r.status = StatusCancelled
	r.updatedAt = now
	return nil
}

// Expire closes an ACTIVE request whose deadline has passed.
func (r *Request) Expire(now time.Time) bool {
	if !r.Open() || now.Before(r.expiresAt) {
		return false
	}
	r.status = StatusExpired
	r.updatedAt = now
	return true
}

func (r *Request) IsOwnedBy(userID uuid.UUID) bool {
	return r.userID == userID
}

// DeliveredCount counts notifications that reached the recipient.
func (r *Request) DeliveredCount() int {
	n := 0
	for _, rec := range r.notifications {
		if rec.Delivered {
			n++
		}
	}
	return n
}

// Satisfies is the matching predicate between a stored intent and a catalog
// item. Only FRESH items qualify, and an intent without any criteria
// matches nothing.
func Satisfies(in intent.ParsedIntent, item *product.Product) bool {
	if item == nil || !item.IsFresh() || in.IsEmpty() {
		return false
	}
	return in.CategoryAccepts(item.Category()) &&
		in.PriceAccepts(item.Price()) &&
		in.PlatformAccepts(item.Platform())
}

func (r *Request) ID() uuid.UUID                  { return r.id }
func (r *Request) UserID() uuid.UUID              { return r.userID }
func (r *Request) UserEmail() string              { return r.userEmail }
func (r *Request) Query() string                  { return r.query }
func (r *Request) Intent() intent.ParsedIntent    { return r.intent }
func (r *Request) Status() Status                 { return r.status }
func (r *Request) MatchedProductIDs() []uuid.UUID { return r.matchedProductIDs }
func (r *Request) Notifications() []Notification  { return r.notifications }
func (r *Request) FulfilledAt() *time.Time        { return r.fulfilledAt }
func (r *Request) ExpiresAt() time.Time           { return r.expiresAt }
func (r *Request) Version() int32                 { return r.version }
func (r *Request) CreatedAt() time.Time           { return r.createdAt }
func (r *Request) UpdatedAt() time.Time           { return r.updatedAt }
