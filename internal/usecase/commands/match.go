package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/pkg/errs"
	"affiliate-notify/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	requestPageSize = 100
	casBaseBackoff  = 20 * time.Millisecond
	casMaxBackoff   = 500 * time.Millisecond
)

var (
	ErrRequestNotFound      = errs.New("request not found")
	ErrProductNotFound      = errs.New("product not found")
	ErrMatchContention      = errs.New("request state kept changing, giving up")
	ErrMatchLockUnavailable = errs.New("request is being matched elsewhere")
)

type MatchResult struct {
	Claimed   int `json:"claimed"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

func (r *MatchResult) add(o MatchResult) {
	r.Claimed += o.Claimed
	r.Delivered += o.Delivered
	r.Failed += o.Failed
}

// MatchEngine pairs shopping requests with catalog products and notifies
// the owners. Each request is processed under its own lock, and state is
// persisted with a version check so concurrent runs never claim the same
// product twice.
type MatchEngine interface {
	MatchNewRequest(ctx context.Context, requestID uuid.UUID) (*MatchResult, error)
	MatchProduct(ctx context.Context, productID uuid.UUID) (*MatchResult, error)
}

type matchEngineImpl struct {
	uow      shared.UnitOfWork
	notifier shared.Notifier
	locker   shared.Locker
	clock    clock.Clock
	cfg      config.MatchConfig
}

func NewMatchEngine(uow shared.UnitOfWork, notifier shared.Notifier, locker shared.Locker, clk clock.Clock, cfg config.Config) MatchEngine {
	return &matchEngineImpl{
		uow:      uow,
		notifier: notifier,
		locker:   locker,
		clock:    clk,
		cfg:      cfg.Match,
	}
}

// claimFunc inspects a freshly loaded request and records new matches on
// it. It returns the products claimed in this attempt.
type claimFunc func(ctx context.Context, tx shared.Tx, req *request.Request, now time.Time) ([]*product.Product, error)

func (e *matchEngineImpl) MatchNewRequest(ctx context.Context, requestID uuid.UUID) (*MatchResult, error) {
	claim := func(ctx context.Context, tx shared.Tx, req *request.Request, now time.Time) ([]*product.Product, error) {
		if req.Intent().IsEmpty() {
			return nil, nil
		}
		candidates, err := tx.Reads().CandidateProducts(ctx, req.Intent(), req.MatchedProductIDs(), e.cfg.CandidateLimit)
		if err != nil {
			return nil, err
		}
		return req.ClaimMatches(candidates, now, e.cfg.FulfillmentThreshold, e.cfg.CandidateLimit)
	}

	result, err := e.processRequest(ctx, requestID, claim)
	if err != nil {
		return nil, err
	}
	metrics.MatchesClaimedTotal.WithLabelValues(metrics.TriggerRequest).Add(float64(result.Claimed))
	return result, nil
}

// MatchProduct offers one product to every open request that might want
// it. A failure on one request is logged and does not stop the others.
func (e *matchEngineImpl) MatchProduct(ctx context.Context, productID uuid.UUID) (*MatchResult, error) {
	item, err := e.uow.CommandReads().ProductByID(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	total := &MatchResult{}
	if !item.IsFresh() {
		return total, nil
	}

	claim := func(ctx context.Context, tx shared.Tx, req *request.Request, now time.Time) ([]*product.Product, error) {
		if req.HasMatched(item.ID()) || !request.Satisfies(req.Intent(), item) {
			return nil, nil
		}
		added, err := req.RecordMatch(item.ID(), now, e.cfg.FulfillmentThreshold)
		if err != nil || !added {
			return nil, err
		}
		return []*product.Product{item}, nil
	}

	var after *shared.RequestPosition
	for {
		page, err := e.uow.CommandReads().ActiveRequestsForProduct(ctx, item, e.clock.Now(), after, requestPageSize)
		if err != nil {
			return total, err
		}
		for _, req := range page {
			if !request.Satisfies(req.Intent(), item) {
				continue
			}
			res, err := e.processRequest(ctx, req.ID(), claim)
			if err != nil {
				if ctx.Err() != nil {
					return total, ctx.Err()
				}
				slog.Warn("failed to match product against request",
					"product_id", item.ID(),
					"request_id", req.ID(),
					"error", err.Error())
				continue
			}
			total.add(*res)
		}
		if len(page) < requestPageSize {
			break
		}
		last := page[len(page)-1]
		after = &shared.RequestPosition{CreatedAt: last.CreatedAt(), ID: last.ID()}
	}

	metrics.MatchesClaimedTotal.WithLabelValues(metrics.TriggerProduct).Add(float64(total.Claimed))
	return total, nil
}

// processRequest runs claim, notify and record for one request under its
// lock. Claimed products are persisted before anyone is notified, so a
// crash between the two can lose a notification but never duplicate one.
func (e *matchEngineImpl) processRequest(ctx context.Context, requestID uuid.UUID, claim claimFunc) (*MatchResult, error) {
	lock, err := e.locker.Acquire(ctx, "match:request:"+requestID.String(), e.cfg.LockTTL)
	if err != nil {
		return nil, errs.Mark(err, ErrMatchLockUnavailable)
	}
	defer func() {
		if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil {
			slog.Warn("failed to release match lock", "request_id", requestID, "error", rerr.Error())
		}
	}()

	var (
		req     *request.Request
		claimed []*product.Product
	)
	err = e.withCAS(ctx, func() error {
		claimed = nil
		return e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			r, err := tx.Reads().RequestByID(ctx, requestID)
			if err != nil {
				return err
			}
			req = r
			now := e.clock.Now()
			if r.Expire(now) {
				metrics.RequestsExpiredTotal.Inc()
				return tx.Requests().SaveState(ctx, tx.DB(), r)
			}
			if !r.Open() {
				return nil
			}
			c, err := claim(ctx, tx, r, now)
			if err != nil {
				return err
			}
			if len(c) == 0 {
				return nil
			}
			if err := tx.Requests().SaveState(ctx, tx.DB(), r); err != nil {
				return err
			}
			claimed = c
			return nil
		})
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	result := &MatchResult{Claimed: len(claimed)}
	if len(claimed) == 0 {
		return result, nil
	}

	records := e.deliver(ctx, req, claimed)
	for _, rec := range records {
		if rec.Delivered {
			result.Delivered++
		} else {
			result.Failed++
		}
	}

	if err := e.recordDeliveries(ctx, requestID, records); err != nil {
		slog.Warn("failed to record notification outcomes",
			"request_id", requestID,
			"count", len(records),
			"error", err.Error())
	}
	return result, nil
}

// deliver notifies the owner once per claimed product. Every delivery has
// its own deadline, and a failure is recorded rather than returned.
func (e *matchEngineImpl) deliver(ctx context.Context, req *request.Request, claimed []*product.Product) []request.Notification {
	records := make([]request.Notification, 0, len(claimed))
	for _, item := range claimed {
		n := shared.MatchNotification{
			RequestID:     req.ID(),
			UserID:        req.UserID(),
			UserEmail:     req.UserEmail(),
			Query:         req.Query(),
			ProductID:     item.ID(),
			ProductTitle:  item.Title().String(),
			Price:         item.Price(),
			Platform:      item.Platform().String(),
			AffiliateLink: item.AffiliateLink(),
			ImageURL:      item.ImageURL(),
			MatchedAt:     e.clock.Now(),
		}

		dctx, cancel := context.WithTimeout(ctx, e.cfg.DeliveryTimeout)
		err := e.notifier.Notify(dctx, n)
		cancel()

		if err != nil {
			slog.Warn("match notification failed",
				"request_id", req.ID(),
				"product_id", item.ID(),
				"error", err.Error())
		}
		records = append(records, request.Notification{
			ProductID: item.ID(),
			SentAt:    e.clock.Now(),
			Delivered: err == nil,
		})
	}
	return records
}

func (e *matchEngineImpl) recordDeliveries(ctx context.Context, requestID uuid.UUID, records []request.Notification) error {
	ctx = context.WithoutCancel(ctx)
	return e.withCAS(ctx, func() error {
		return e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			req, err := tx.Reads().RequestByID(ctx, requestID)
			if err != nil {
				return err
			}
			for _, rec := range records {
				req.AppendNotification(rec)
			}
			return tx.Requests().SaveState(ctx, tx.DB(), req)
		})
	})
}

// withCAS retries op while it loses optimistic version races, backing off
// exponentially between attempts.
func (e *matchEngineImpl) withCAS(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = casBaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = casMaxBackoff
	exp.Reset()

	attempts := e.cfg.MaxCASAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !infra.IsKind(err, infra.KindConflict) {
			return err
		}
		metrics.MatchConflictsTotal.Inc()
		if attempt >= attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exp.NextBackOff()):
		}
	}
	return errs.Mark(fmt.Errorf("after %d attempts: %w", attempts, err), ErrMatchContention)
}
