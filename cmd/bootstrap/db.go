package bootstrap

import (
	"context"
	"log/slog"

	"affiliate-notify/internal/infra/db"
	"affiliate-notify/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			slog.Info("database pool closed", "host", cfg.DB.Host, "database", cfg.DB.DBName)
			return nil
		},
	})

	return pool, nil
}
