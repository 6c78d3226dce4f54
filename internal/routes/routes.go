package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/audit"
	"github.com/BruksfildServices01/trimbook/internal/auth"
	"github.com/BruksfildServices01/trimbook/internal/billing"
	"github.com/BruksfildServices01/trimbook/internal/handlers"
	"github.com/BruksfildServices01/trimbook/internal/metrics"
	"github.com/BruksfildServices01/trimbook/internal/middleware"
	"github.com/BruksfildServices01/trimbook/internal/realtime"
	ucIdentity "github.com/BruksfildServices01/trimbook/internal/usecase/identity"
	ucShop "github.com/BruksfildServices01/trimbook/internal/usecase/shop"
)

// Deps are the singletons the route table hands to handlers.
type Deps struct {
	Identity    *ucIdentity.Service
	Shops       *ucShop.Service
	AuditLogs   *audit.Logger
	Billing     *billing.MercadoPagoSync
	Hub         *realtime.Hub
	Tokens      auth.TokenService
	Limiter     *middleware.ClientLimiter
	CORSOrigins []string
	Log         *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(d.CORSOrigins))
	r.Use(metrics.Middleware())

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.Identity)
	meHandler := handlers.NewMeHandler(d.Identity)
	barbershopHandler := handlers.NewBarbershopHandler(d.Shops)
	publicHandler := handlers.NewPublicHandler(d.Shops)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.Shops, d.AuditLogs, d.Log)
	billingHandler := handlers.NewBillingHandler(d.Billing)
	realtimeHandler := handlers.NewRealtimeHandler(d.Hub, d.Shops)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", middleware.WebSocketAuth(d.Tokens), realtimeHandler.Connect)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/me", middleware.AuthMiddleware(d.Tokens), meHandler.GetMe)

		api.POST("/billing/webhook", billingHandler.Webhook)

		shops := api.Group("/barbershops")

		// ------------------------------
		// 🔐 OWNER
		// ------------------------------
		owner := shops.Group("")
		owner.Use(middleware.AuthMiddleware(d.Tokens))
		{
			owner.POST("", barbershopHandler.Create)
			owner.GET("/:slug", barbershopHandler.Get)
			owner.GET("/:slug/audit-logs", auditLogsHandler.List)
			owner.POST("/:slug/barbers", barbershopHandler.AddBarber)
			owner.DELETE("/:slug/barbers", barbershopHandler.RemoveBarber)
			owner.POST("/:slug/barbers/:barberId/slots", barbershopHandler.OpenSlot)
		}

		// ------------------------------
		// 🌐 PUBLIC BOOKING
		// ------------------------------
		public := shops.Group("")
		public.Use(
			middleware.RateLimitMiddleware(d.Limiter, d.Log),
			middleware.OptionalAuth(d.Tokens),
		)
		{
			public.GET("/:slug/public", publicHandler.Show)
			public.GET("/:slug/barbers", publicHandler.ListBarbers)
			public.GET("/:slug/barbers/:barberId/schedule", publicHandler.AvailableSlots)
			public.POST("/:slug/appointments", publicHandler.CreateAppointment)
			public.POST("/:slug/barbers/:barberId/slots/:appointmentId/book", publicHandler.BookSlot)
			public.PUT("/:slug/barbers/:barberId/appointments/:appointmentId", publicHandler.UpdateAppointment)
			public.DELETE("/:slug/barbers/:barberId/appointments/:appointmentId", publicHandler.DeleteAppointment)
		}
	}
}
