// Package notify holds the delivery channels for match notifications.
package notify

import (
	"fmt"

	"affiliate-notify/internal/pkg/clock"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
)

// New picks the notifier for cfg.Notify.Driver. The Kafka notifier is
// always built because the outbox dispatcher forwards through it.
func New(cfg config.Config, uow shared.UnitOfWork, kafkaNotifier *KafkaNotifier, clk clock.Clock) (shared.Notifier, error) {
	switch cfg.Notify.Driver {
	case config.NotifyDriverOutbox:
		return NewOutboxNotifier(uow, clk, cfg.Notify), nil
	case config.NotifyDriverKafka:
		return kafkaNotifier, nil
	case config.NotifyDriverLog:
		return NewLogNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
	}
}
