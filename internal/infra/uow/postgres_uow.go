package uow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra/readstore"
	"affiliate-notify/internal/infra/repository"
	"affiliate-notify/internal/infra/sqlstore"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"

	maxTxRetries   = 3
	txRetryInitial = 100 * time.Millisecond
	txRetryMax     = time.Second
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
	q    *sqlstore.Queries
}

func NewPostgresUoW(pool *pgxpool.Pool, q *sqlstore.Queries) shared.UnitOfWork {
	return &PostgresUoW{pool: pool, q: q}
}

// Within runs fn in a READ COMMITTED transaction. Request rows are guarded
// by their version column and products by row locks, so only serialization
// failures and deadlocks are retried, each time in a fresh transaction.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = txRetryInitial
	policy.MaxInterval = txRetryMax
	policy.RandomizationFactor = 0.2
	policy.MaxElapsedTime = 0

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := u.attempt(ctx, fn)
		if err == nil || !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxTxRetries), ctx), func(err error, wait time.Duration) {
		slog.Warn("retrying transaction",
			"attempt", attempt,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error())
	})
	if err != nil && isRetryableError(err) {
		slog.Error("transaction failed after max retries", "attempts", attempt, "error", err.Error())
		return errs.Mark(err, errMaxRetriesExceeded)
	}
	return err
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{uow: u, dbtx: u.pool}
}

// attempt owns one transaction from begin to commit or rollback, so no
// deferred rollbacks pile up across retries.
func (u *PostgresUoW) attempt(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	err = fn(ctx, &pgTx{dbtx: pgxTx, uow: u})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rbErr := pgxTx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", "error", rbErr.Error())
	}
	return err
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrCodeSerializationFailure || pgErr.Code == pgErrCodeDeadlockDetected
}

type pgTx struct {
	dbtx sqlstore.DBTX
	uow  *PostgresUoW

	userRepo         shared.UserRepository
	productRepo      shared.ProductRepository
	requestRepo      shared.RequestRepository
	notificationRepo shared.NotificationRepository
	idempotencyRepo  shared.IdempotencyRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) DB() sqlstore.DBTX {
	return t.dbtx
}

func (t *pgTx) Users() shared.UserRepository {
	if t.userRepo == nil {
		t.userRepo = repository.NewUserRepository(t.uow.q, t.dbtx)
	}
	return t.userRepo
}

func (t *pgTx) Products() shared.ProductRepository {
	if t.productRepo == nil {
		t.productRepo = repository.NewProductRepository(t.uow.q, t.dbtx)
	}
	return t.productRepo
}

func (t *pgTx) Requests() shared.RequestRepository {
	if t.requestRepo == nil {
		t.requestRepo = repository.NewRequestRepository(t.uow.q, t.dbtx)
	}
	return t.requestRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.uow.q, t.dbtx)
	}
	return t.notificationRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository(t.uow.q, t.dbtx)
	}
	return t.idempotencyRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{
			uow:  t.uow,
			dbtx: t.dbtx,
		}
	}
	return t.commandReads
}

type commandReads struct {
	uow  *PostgresUoW
	dbtx sqlstore.DBTX

	userStore    *readstore.UserReadStore
	productStore *readstore.ProductReadStore
	requestStore *readstore.RequestReadStore
}

func (r *commandReads) users() *readstore.UserReadStore {
	if r.userStore == nil {
		r.userStore = readstore.NewUserReadStore(r.uow.q, r.dbtx)
	}
	return r.userStore
}

func (r *commandReads) products() *readstore.ProductReadStore {
	if r.productStore == nil {
		r.productStore = readstore.NewProductReadStore(r.uow.q, r.dbtx)
	}
	return r.productStore
}

func (r *commandReads) requests() *readstore.RequestReadStore {
	if r.requestStore == nil {
		r.requestStore = readstore.NewRequestReadStore(r.uow.q, r.dbtx)
	}
	return r.requestStore
}

func (r *commandReads) UserByID(ctx context.Context, id uuid.UUID) (*shared.UserSnapshot, error) {
	u, err := r.users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}
	return &shared.UserSnapshot{
		ID:       u.ID,
		Email:    u.Email,
		Role:     role,
		IsActive: u.IsActive,
	}, nil
}

func (r *commandReads) ProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.products().LoadByID(ctx, id)
}

func (r *commandReads) ProductForUpdate(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	return r.products().LoadForUpdate(ctx, id)
}

func (r *commandReads) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]*product.Product, error) {
	return r.products().LoadByIDs(ctx, ids)
}

func (r *commandReads) RequestByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return r.requests().LoadByID(ctx, id)
}

func (r *commandReads) CandidateProducts(ctx context.Context, in intent.ParsedIntent, exclude []uuid.UUID, limit int) ([]*product.Product, error) {
	return r.products().LoadCandidates(ctx, in, exclude, clampLimit(limit))
}

func (r *commandReads) ActiveRequestsForProduct(ctx context.Context, item *product.Product, now time.Time, after *shared.RequestPosition, limit int) ([]*request.Request, error) {
	if after == nil {
		return r.requests().LoadActiveForProduct(ctx, item, now, nil, uuid.Nil, clampLimit(limit))
	}
	return r.requests().LoadActiveForProduct(ctx, item, now, &after.CreatedAt, after.ID, clampLimit(limit))
}

func clampLimit(limit int) int32 {
	const maxLimit = 1000
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return int32(limit) // #nosec G115 -- bounded above
}
