package shared

import (
	"context"
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra/sqlstore"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn in one transaction, retrying on serialization
	// failures and deadlocks.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads reads outside any transaction, for checks that do not
	// need to hold locks.
	CommandReads() CommandReads
}

type Tx interface {
	Users() UserRepository
	Products() ProductRepository
	Requests() RequestRepository
	Notifications() NotificationRepository
	Idempotency() IdempotencyRepository
	Reads() CommandReads
	DB() sqlstore.DBTX
}

// CommandReads loads aggregates for the write side. Results are domain
// objects so commands can mutate and persist them.
type CommandReads interface {
	UserByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	ProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ProductForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error)
	RequestByID(ctx context.Context, id uuid.UUID) (*request.Request, error)
	CandidateProducts(ctx context.Context, in intent.ParsedIntent, exclude []uuid.UUID, limit int) ([]*product.Product, error)
	ActiveRequestsForProduct(ctx context.Context, item *product.Product, now time.Time, after *RequestPosition, limit int) ([]*request.Request, error)
}

// RequestPosition is a keyset position in (created_at, id) order.
type RequestPosition struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type UserSnapshot struct {
	ID       uuid.UUID
	Email    string
	Role     user.Role
	IsActive bool
}

type UserRepository interface {
	Create(ctx context.Context, tx sqlstore.DBTX, u *user.User) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, tx sqlstore.DBTX, userID uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, tx sqlstore.DBTX, p *product.Product) error
	Update(ctx context.Context, tx sqlstore.DBTX, p *product.Product) error
	Delete(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) error
	RecordView(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) (*product.Product, error)
	RecordClick(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) (string, error)
	LockForAging(ctx context.Context, tx sqlstore.DBTX, staleBefore, archiveBefore time.Time, limit int32) ([]*product.Product, error)
	SaveFreshness(ctx context.Context, tx sqlstore.DBTX, p *product.Product) error
}

type RequestRepository interface {
	Create(ctx context.Context, tx sqlstore.DBTX, req *request.Request) error
	SaveState(ctx context.Context, tx sqlstore.DBTX, req *request.Request) error
	Delete(ctx context.Context, tx sqlstore.DBTX, id uuid.UUID) error
	DeleteAll(ctx context.Context, tx sqlstore.DBTX, status *request.Status) (int64, error)
	ListExpired(ctx context.Context, tx sqlstore.DBTX, now time.Time, limit int32) ([]*request.Request, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx sqlstore.DBTX, job NewNotificationJob) (uuid.UUID, error)
	// LeaseDue hides up to limit due jobs from other dispatchers for lease.
	LeaseDue(ctx context.Context, tx sqlstore.DBTX, now time.Time, lease time.Duration, limit int32) ([]NotificationJob, error)
	MarkDone(ctx context.Context, tx sqlstore.DBTX, jobID uuid.UUID) error
	MarkFailed(ctx context.Context, tx sqlstore.DBTX, jobID uuid.UUID, lastError string, retryAt time.Time, dead bool) error
}

// IdempotencyRepository guards replayable writes. TryInsert reports whether
// the caller claimed the key; a false result means another call owns it.
type IdempotencyRepository interface {
	TryInsert(ctx context.Context, tx sqlstore.DBTX, rec NewIdempotencyKey) (bool, error)
	Get(ctx context.Context, tx sqlstore.DBTX, key, userID uuid.UUID) (*IdempotencyRecord, error)
	Complete(ctx context.Context, tx sqlstore.DBTX, key, userID, resultID uuid.UUID) error
	DeleteExpired(ctx context.Context, tx sqlstore.DBTX, now time.Time) (int64, error)
}
