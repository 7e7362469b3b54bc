package commands

import (
	"context"
	"log/slog"

	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
)

const sweepBatchSize = 200

type SweepResult struct {
	Staled   int
	Archived int
	Expired  int
	Purged   int
}

// SweepCommands ages catalog prices and closes requests past their
// deadline. Each batch runs in its own transaction so a long sweep does not
// hold locks for its whole duration.
type SweepCommands interface {
	AgeProducts(ctx context.Context) (*SweepResult, error)
	ExpireRequests(ctx context.Context) (*SweepResult, error)
	PurgeIdempotencyKeys(ctx context.Context) (*SweepResult, error)
}

type sweepCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.FreshnessConfig
}

func NewSweepCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config) SweepCommands {
	return &sweepCommandsImpl{
		uow:   uow,
		clock: clk,
		cfg:   cfg.Freshness,
	}
}

func (s *sweepCommandsImpl) AgeProducts(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	now := s.clock.Now()
	staleBefore := now.Add(-s.cfg.StaleAfter)
	archiveBefore := now.Add(-s.cfg.ArchiveAfter)

	for {
		var batch int
		var step SweepResult
		err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			step = SweepResult{}
			items, err := tx.Products().LockForAging(ctx, tx.DB(), staleBefore, archiveBefore, sweepBatchSize)
			if err != nil {
				return err
			}
			batch = len(items)
			for _, item := range items {
				changed, err := item.Age(now, s.cfg.StaleAfter, s.cfg.ArchiveAfter)
				if err != nil {
					return err
				}
				if !changed {
					continue
				}
				if err := tx.Products().SaveFreshness(ctx, tx.DB(), item); err != nil {
					return err
				}
				switch item.Freshness() {
				case product.FreshnessArchived:
					step.Archived++
				case product.FreshnessStale:
					step.Staled++
				}
			}
			return nil
		})
		if err != nil {
			return result, err
		}
		result.Staled += step.Staled
		result.Archived += step.Archived
		metrics.FreshnessTransitionsTotal.WithLabelValues(product.FreshnessStale.String()).Add(float64(step.Staled))
		metrics.FreshnessTransitionsTotal.WithLabelValues(product.FreshnessArchived.String()).Add(float64(step.Archived))
		if batch < sweepBatchSize {
			break
		}
	}

	if result.Staled > 0 || result.Archived > 0 {
		slog.Info("product freshness aged", "staled", result.Staled, "archived", result.Archived)
	}
	return result, nil
}

func (s *sweepCommandsImpl) ExpireRequests(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	now := s.clock.Now()

	for {
		var batch, expired int
		err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			expired = 0
			reqs, err := tx.Requests().ListExpired(ctx, tx.DB(), now, sweepBatchSize)
			if err != nil {
				return err
			}
			batch = len(reqs)
			for _, req := range reqs {
				if !req.Expire(now) {
					continue
				}
				if err := tx.Requests().SaveState(ctx, tx.DB(), req); err != nil {
					return err
				}
				expired++
			}
			return nil
		})
		if err != nil {
			return result, err
		}
		result.Expired += expired
		if batch < sweepBatchSize {
			break
		}
	}

	if result.Expired > 0 {
		metrics.RequestsExpiredTotal.Add(float64(result.Expired))
		slog.Info("shopping requests expired", "count", result.Expired)
	}
	return result, nil
}

func (s *sweepCommandsImpl) PurgeIdempotencyKeys(ctx context.Context) (*SweepResult, error) {
	var purged int64
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Idempotency().DeleteExpired(ctx, tx.DB(), s.clock.Now())
		purged = n
		return err
	})
	if err != nil {
		return &SweepResult{}, err
	}
	if purged > 0 {
		slog.Info("expired idempotency keys purged", "count", purged)
	}
	return &SweepResult{Purged: int(purged)}, nil
}
