package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/handler/api"
	"affiliate-notify/internal/handler/middleware"
	"affiliate-notify/internal/handler/validation"
	"affiliate-notify/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups the API handlers so the router signature stays stable as
// endpoints are added.
type Handlers struct {
	Auth    *api.AuthHandler
	Intent  *api.IntentHandler
	Request *api.RequestHandler
	Product *api.ProductHandler
	Admin   *api.AdminHandler
	AuthMw  *middleware.AuthMiddleware
	Logger  *middleware.Logger
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers) error {
	if err := validation.Register(); err != nil {
		return err
	}
	setupMiddleware(engine, cfg, h.Logger)
	setupRoutes(engine, h)
	return nil
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authMw := h.AuthMw
	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/register", Handler: h.Auth.Register},
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMw.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		addRoutes(apiGroup.Group("/intents"), []route{
			{Method: http.MethodPost, Path: "/parse", Handler: h.Intent.Parse},
		})

		requests := apiGroup.Group("/requests")
		requests.Use(authMw.RequireAuth())
		{
			addRoutes(requests, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Request.Submit},
				{Method: http.MethodGet, Path: "/mine", Handler: h.Request.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Request.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Request.Cancel},
			})
		}

		addRoutes(apiGroup.Group("/products"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Product.List},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Product.Get},
			{Method: http.MethodPost, Path: "/:id/click", Handler: h.Product.Click},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(authMw.RequireAuth())
		{
			adminOnly := []gin.HandlerFunc{authMw.RequireRoleAtLeast(user.RoleAdmin)}
			addRoutes(admin.Group("/requests"), []route{
				{Method: http.MethodGet, Path: "", Handler: h.Admin.ListRequests, Mw: adminOnly},
				{Method: http.MethodDelete, Path: "", Handler: h.Admin.DeleteRequests, Mw: adminOnly},
				{Method: http.MethodGet, Path: "/stats", Handler: h.Admin.RequestStats, Mw: adminOnly},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Admin.DeleteRequest, Mw: adminOnly},
			})

			curators := []gin.HandlerFunc{authMw.RequireRoleAtLeast(user.RoleCurator)}
			addRoutes(admin.Group("/products"), []route{
				{Method: http.MethodPost, Path: "", Handler: h.Admin.CreateProduct, Mw: curators},
				{Method: http.MethodGet, Path: "/stats", Handler: h.Admin.ProductStats, Mw: curators},
				{Method: http.MethodPut, Path: "/:id", Handler: h.Admin.UpdateProduct, Mw: curators},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Admin.DeleteProduct, Mw: curators},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
