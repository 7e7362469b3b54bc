package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"affiliate-notify/internal/infra/lock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/commands"
	"affiliate-notify/internal/usecase/shared"
)

const (
	sweepLockKey  = "sweep:freshness"
	sweepLockWait = time.Second
)

// Sweeper ages catalog freshness, expires overdue requests and drops stale
// idempotency keys. Only one replica sweeps at a time; the others skip the
// tick.
type Sweeper struct {
	loop
	cmds   commands.SweepCommands
	locker shared.Locker
	cfg    config.FreshnessConfig
}

func NewSweeper(cmds commands.SweepCommands, locker shared.Locker, cfg config.Config) *Sweeper {
	s := &Sweeper{cmds: cmds, locker: locker, cfg: cfg.Freshness}
	s.loop = loop{name: "freshness-sweeper", interval: cfg.Freshness.SweepInterval, tick: s.SweepOnce}
	return s
}

func (s *Sweeper) SweepOnce(ctx context.Context) error {
	acquireCtx, cancel := context.WithTimeout(ctx, sweepLockWait)
	l, err := s.locker.Acquire(acquireCtx, sweepLockKey, s.cfg.SweepInterval)
	cancel()
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			slog.Debug("sweep skipped, another worker holds the lock")
			return nil
		}
		return err
	}
	defer func() {
		if rerr := l.Release(context.WithoutCancel(ctx)); rerr != nil {
			slog.Warn("failed to release sweep lock", "error", rerr.Error())
		}
	}()

	var total commands.SweepResult
	aged, ageErr := s.cmds.AgeProducts(ctx)
	if aged != nil {
		total.Staled, total.Archived = aged.Staled, aged.Archived
	}
	expired, expErr := s.cmds.ExpireRequests(ctx)
	if expired != nil {
		total.Expired = expired.Expired
	}
	purged, purgeErr := s.cmds.PurgeIdempotencyKeys(ctx)
	if purged != nil {
		total.Purged = purged.Purged
	}
	slog.Info("sweep finished",
		"staled", total.Staled,
		"archived", total.Archived,
		"expired", total.Expired,
		"purged_keys", total.Purged)
	return errors.Join(ageErr, expErr, purgeErr)
}
