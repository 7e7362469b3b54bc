package bootstrap

import (
	"affiliate-notify/internal/pkg/config"
	"affiliate-notify/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		worker.NewDispatcher,
		worker.NewSweeper,
	),
	fx.Invoke(startWorkers),
)

// The dispatcher only has work when notifications go through the outbox.
func startWorkers(lc fx.Lifecycle, cfg config.Config, dispatcher *worker.Dispatcher, sweeper *worker.Sweeper) {
	if cfg.Notify.Driver == config.NotifyDriverOutbox {
		lc.Append(fx.Hook{OnStart: dispatcher.Start, OnStop: dispatcher.Stop})
	}
	lc.Append(fx.Hook{OnStart: sweeper.Start, OnStop: sweeper.Stop})
}
