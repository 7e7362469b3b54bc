package components

import (
	"context"
	"log/slog"

	"affiliate-notify/internal/infra/lock"
	"affiliate-notify/internal/infra/natsrpc"
	"affiliate-notify/internal/infra/notify"
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/usecase/shared"
	"affiliate-notify/internal/worker"

	"go.uber.org/fx"
)

// MessagingModule wires notification delivery, the per-request lock and the
// NATS parse responder.
var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewMessageWriter,
		fx.Annotate(
			notify.NewKafkaNotifier,
			fx.As(fx.Self()),
			fx.As(new(worker.Publisher)),
		),
		notify.New,
		NewLocker,
	),
	fx.Invoke(startParseResponder),
)

func NewMessageWriter(lc fx.Lifecycle, cfg config.Config) notify.MessageWriter {
	w := notify.NewKafkaWriter(cfg.Notify)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return w.Close()
		},
	})
	return w
}

// NewLocker uses Redis when REDIS_URL is set so match runs are serialized
// across replicas; otherwise locks are process-local.
func NewLocker(lc fx.Lifecycle, cfg config.Config) (shared.Locker, error) {
	if cfg.Redis.URL == "" {
		slog.Info("REDIS_URL not set, using in-process locks")
		return lock.NewLocalLocker(), nil
	}

	client, err := lock.NewRedisClient(context.Background(), cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return lock.NewRedisLocker(client), nil
}

func startParseResponder(lc fx.Lifecycle, cfg config.Config) {
	if cfg.NATS.URL == "" {
		slog.Info("NATS_URL not set, parse responder disabled")
		return
	}

	var responder *natsrpc.ParseResponder
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			conn, err := natsrpc.Connect(cfg.NATS)
			if err != nil {
				return err
			}
			responder = natsrpc.NewParseResponder(conn, cfg.NATS)
			if err := responder.Start(); err != nil {
				conn.Close()
				return err
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			if responder == nil {
				return nil
			}
			return responder.Close()
		},
	})
}
