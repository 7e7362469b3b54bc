package worker

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
)

const (
	retryBase = 2 * time.Second
	retryMax  = 5 * time.Minute
)

// Publisher forwards an encoded notification. notify.KafkaNotifier
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Dispatcher drains notification_jobs. Rows are leased with SKIP LOCKED, so
// several replicas can run it side by side. Delivery is at least once: a job
// whose outcome could not be recorded is published again when its lease
// expires.
type Dispatcher struct {
	loop
	uow          shared.UnitOfWork
	publisher    Publisher
	clock        clock.Clock
	batchSize    int32
	maxAttempts  int
	leaseTimeout time.Duration
}

func NewDispatcher(uow shared.UnitOfWork, publisher Publisher, clk clock.Clock, cfg config.Config) *Dispatcher {
	d := &Dispatcher{
		uow:          uow,
		publisher:    publisher,
		clock:        clk,
		batchSize:    int32(max(cfg.Notify.OutboxBatchSize, 1)), // #nosec G115 -- small config value
		maxAttempts:  max(cfg.Notify.OutboxMaxAttempts, 1),
		leaseTimeout: cfg.Notify.OutboxLeaseTimeout,
	}
	d.loop = loop{name: "outbox-dispatcher", interval: cfg.Notify.OutboxPollInterval, tick: d.DispatchOnce}
	return d
}

// DispatchOnce leases one batch of due jobs and publishes them outside the
// lease transaction. Each outcome commits on its own, so one failed write
// never undoes the jobs around it. A failed publish is rescheduled with
// exponential delay until the attempt budget is spent, then the job is
// marked dead.
func (d *Dispatcher) DispatchOnce(ctx context.Context) error {
	var jobs []shared.NotificationJob
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		jobs, err = tx.Notifications().LeaseDue(ctx, tx.DB(), d.clock.Now(), d.leaseTimeout, d.batchSize)
		return err
	})
	if err != nil {
		return err
	}

	var errList []error
	for _, job := range jobs {
		if err := d.dispatch(ctx, job); err != nil {
			slog.Warn("failed to record notification job outcome",
				"job_id", job.ID,
				"error", err.Error())
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func (d *Dispatcher) dispatch(ctx context.Context, job shared.NotificationJob) error {
	pubErr := d.publisher.Publish(ctx, job.Key, job.Payload)
	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if pubErr != nil {
			return d.fail(ctx, tx, job, pubErr)
		}
		if err := tx.Notifications().MarkDone(ctx, tx.DB(), job.ID); err != nil {
			return err
		}
		metrics.OutboxJobsTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()
		return nil
	})
}

func (d *Dispatcher) fail(ctx context.Context, tx shared.Tx, job shared.NotificationJob, cause error) error {
	attempts := job.Attempts + 1
	dead := attempts >= d.maxAttempts
	retryAt := d.clock.Now().Add(RetryDelay(attempts))

	outcome := metrics.OutcomeRetried
	if dead {
		outcome = metrics.OutcomeDead
	}
	slog.Warn("notification job failed",
		"job_id", job.ID,
		"attempts", attempts,
		"dead", dead,
		"error", cause.Error())
	metrics.OutboxJobsTotal.WithLabelValues(outcome).Inc()

	return tx.Notifications().MarkFailed(ctx, tx.DB(), job.ID, cause.Error(), retryAt, dead)
}

// RetryDelay is 2s, 4s, 8s ... capped at five minutes.
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := float64(retryBase) * math.Pow(2, float64(attempts-1))
	if d > float64(retryMax) {
		return retryMax
	}
	return time.Duration(d)
}
