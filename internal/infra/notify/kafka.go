package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the notifiers use.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(cfg config.NotifyConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// KafkaNotifier publishes match notifications keyed by request id, so all
// notifications for one request land on the same partition in order.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n shared.MatchNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	err = k.Publish(ctx, n.RequestID.String(), data)
	metrics.NotificationsTotal.WithLabelValues(config.NotifyDriverKafka, outcome(err)).Inc()
	return err
}

// Publish writes an already encoded payload. The outbox dispatcher uses it
// to forward stored jobs.
func (k *KafkaNotifier) Publish(ctx context.Context, key string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

func outcome(err error) string {
	if err != nil {
		return metrics.OutcomeFailed
	}
	return metrics.OutcomeDelivered
}
