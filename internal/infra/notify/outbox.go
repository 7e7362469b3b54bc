package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
)

// OutboxNotifier stores the notification as a job row. Delivery happens
// later in the dispatcher, so Notify succeeds as soon as the row commits.
type OutboxNotifier struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	topic string
}

func NewOutboxNotifier(uow shared.UnitOfWork, clk clock.Clock, cfg config.NotifyConfig) *OutboxNotifier {
	return &OutboxNotifier{uow: uow, clock: clk, topic: cfg.KafkaTopic}
}

func (o *OutboxNotifier) Notify(ctx context.Context, n shared.MatchNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	job := shared.NewNotificationJob{
		Kind:    shared.JobKindMatchNotification,
		Topic:   o.topic,
		Key:     n.RequestID.String(),
		Payload: payload,
		RunAt:   o.clock.Now(),
	}
	err = o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Notifications().CreateJob(ctx, tx.DB(), job)
		return err
	})
	metrics.NotificationsTotal.WithLabelValues(config.NotifyDriverOutbox, outcome(err)).Inc()
	return err
}
