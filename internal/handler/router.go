package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/handler/api"
	"cinema-booking/internal/handler/middleware"
	"cinema-booking/internal/infra/metrics"
	"cinema-booking/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth     *api.AuthHandler
	Checkout *api.CheckoutHandler
	Booking  *api.BookingHandler
	Event    *api.EventHandler
	Payment  *api.PaymentHandler
	CheckIn  *api.CheckInHandler
	Health   *api.HealthHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics, logger *slog.Logger) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware, m)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) {
	engine.GET("/health", h.Health.Live)
	engine.GET("/health/ready", h.Health.Ready)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireOperator := authMiddleware.RequireRoleAtLeast(user.RoleOperator)
	requireAdmin := authMiddleware.RequireRoleAtLeast(user.RoleAdmin)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		events := apiGroup.Group("/events")
		addRoutes(events, []route{
			{Method: http.MethodGet, Path: "", Handler: h.Event.List},
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Event.Availability},
		})

		// authenticated by signature, not by session
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/payments/webhook", Handler: h.Payment.Webhook},
		})

		authed := apiGroup.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			addRoutes(authed, []route{
				{Method: http.MethodPost, Path: "/checkouts", Handler: h.Checkout.Create},
				{Method: http.MethodGet, Path: "/bookings", Handler: h.Booking.List},
				{Method: http.MethodGet, Path: "/bookings/:id", Handler: h.Booking.Get},
				{Method: http.MethodPost, Path: "/bookings/:id/cancel", Handler: h.Booking.Cancel},
				{Method: http.MethodGet, Path: "/bookings/:id/ticket", Handler: h.Booking.Ticket},
				{Method: http.MethodPost, Path: "/check-ins", Handler: h.CheckIn.Redeem, Mw: []gin.HandlerFunc{requireOperator}},
			})

			admin := authed.Group("/admin")
			admin.Use(requireAdmin)
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/events", Handler: h.Event.Create},
				{Method: http.MethodGet, Path: "/payments/review", Handler: h.Payment.ListForReview},
			})
		}
	}
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
