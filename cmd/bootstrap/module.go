package bootstrap

import (
	"affiliate-notify/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	components.PersistenceModule,
	components.MessagingModule,
	components.UseCaseModule,
	components.HandlerModule,
	WorkerModule,
)
