package notify

import (
	"context"
	"log/slog"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
)

// LogNotifier only logs. Useful locally and in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Notify(ctx context.Context, n shared.MatchNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "match notification",
		"request_id", n.RequestID,
		"user_email", user.MaskEmail(n.UserEmail),
		"product_id", n.ProductID,
		"product_title", n.ProductTitle,
		"price", n.Price,
		"platform", n.Platform,
		"link", n.AffiliateLink)
	metrics.NotificationsTotal.WithLabelValues(config.NotifyDriverLog, metrics.OutcomeDelivered).Inc()
	return nil
}
