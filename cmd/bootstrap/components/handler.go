package components

import (
	"affiliate-notify/internal/handler"
	"affiliate-notify/internal/handler/api"
	"affiliate-notify/internal/handler/middleware"
	"affiliate-notify/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewIntentHandler,
		api.NewRequestHandler,
		api.NewProductHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(registerRoutes),
)

type routerParams struct {
	fx.In

	Engine  *gin.Engine
	Config  config.Config
	Auth    *api.AuthHandler
	Intent  *api.IntentHandler
	Request *api.RequestHandler
	Product *api.ProductHandler
	Admin   *api.AdminHandler
	AuthMw  *middleware.AuthMiddleware
	Logger  *middleware.Logger
}

func registerRoutes(p routerParams) error {
	return handler.NewRouter(p.Engine, p.Config, handler.Handlers{
		Auth:    p.Auth,
		Intent:  p.Intent,
		Request: p.Request,
		Product: p.Product,
		Admin:   p.Admin,
		AuthMw:  p.AuthMw,
		Logger:  p.Logger,
	})
}
