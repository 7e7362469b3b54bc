package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusQueued = "queued"
	JobStatusDone   = "done"
	JobStatusDead   = "dead"
)

const JobKindMatchNotification = "match_notification"

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type NewIdempotencyKey struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	RequestHash string
	ExpiresAt   time.Time
}

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Endpoint        string
	RequestHash     string
	Status          string
	ResultRequestID *uuid.UUID
	ExpiresAt       time.Time
}

type NewNotificationJob struct {
	Kind    string
	Topic   string
	Key     string
	Payload []byte
	RunAt   time.Time
}

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Key      string
	Payload  []byte
	Attempts int
	RunAt    time.Time
}

// MatchNotification is what a user is told when a product satisfies one of
// their requests.
type MatchNotification struct {
	RequestID     uuid.UUID `json:"requestId"`
	UserID        uuid.UUID `json:"userId"`
	UserEmail     string    `json:"userEmail"`
	Query         string    `json:"query"`
	ProductID     uuid.UUID `json:"productId"`
	ProductTitle  string    `json:"productTitle"`
	Price         int64     `json:"price"`
	Platform      string    `json:"platform"`
	AffiliateLink string    `json:"affiliateLink"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	MatchedAt     time.Time `json:"matchedAt"`
}

// Notifier delivers a match notification. A nil error means the
// notification was accepted for delivery.
type Notifier interface {
	Notify(ctx context.Context, n MatchNotification) error
}

// Locker serializes work on a key across goroutines or processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}
