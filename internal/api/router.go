package api

import (
	"time"

	"coinpay-backend/config"
	adminNotification "coinpay-backend/internal/api/v1/admin/notification"
	adminOrder "coinpay-backend/internal/api/v1/admin/order"
	adminPayment "coinpay-backend/internal/api/v1/admin/payment"
	"coinpay-backend/internal/api/v1/auth"
	paymentRoutes "coinpay-backend/internal/api/v1/payment"
	userRoutes "coinpay-backend/internal/api/v1/user"
	"coinpay-backend/internal/database"
	"coinpay-backend/internal/middleware"
	"coinpay-backend/internal/payment"
	"coinpay-backend/internal/payment/coinpay"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// NewRegistry lists every payment provider this service can talk to.
func NewRegistry(cfg *config.Config) *payment.Registry {
	transport := utils.NewLoggingTransport(logger.Named("gateway"))
	return payment.NewRegistry(
		coinpay.NewProvider(cfg.GatewayTimeout, transport),
	)
}

// NewRouter wires handlers on top of the connected database.DB and
// database.RedisClient.
func NewRouter(cfg *config.Config) (*gin.Engine, error) {
	db := database.DB
	registry := NewRegistry(cfg)

	configs := services.NewGormConfigStore(db)
	orders := services.NewGormOrderStore(db)
	ledger := services.NewGormLedger(db, cfg.LedgerHashSecret)

	audit := services.NewGormAuditLog(db)

	var replay services.ReplayGuard
	if database.RedisClient != nil {
		replay = services.NewRedisReplayGuard(database.RedisClient, cfg.ReplayMarkerTTL)
	}

	paymentService := services.NewPaymentService(services.PaymentServiceOptions{
		Registry:   registry,
		Configs:    configs,
		Orders:     orders,
		Ledger:     ledger,
		Audit:      audit,
		Replay:     replay,
		BaseURL:    cfg.AppBaseURL,
		ReturnPath: cfg.CoinPayReturnPath,
		Location:   cfg.Location(),
		Logger:     logger.Named("payment"),
	})

	// provider settings may hold numeric ids beyond float64 precision
	binding.EnableDecoderUseNumber = true

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           5 * time.Minute,
	}))

	v1 := router.Group("/api/v1")
	{
		authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
		auth.RegisterRoutes(v1, authMiddleware)
		paymentRoutes.RegisterRoutes(v1, paymentRoutes.NewHandler(paymentService), authMiddleware)

		authorized := v1.Group("/")
		authorized.Use(authMiddleware)
		{
			userRoutes.RegisterRoutes(authorized, userRoutes.NewHandler(ledger))
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(cfg.JWTSecret))
		{
			adminPayment.RegisterRoutes(admin, adminPayment.NewHandler(configs, registry))
			adminOrder.RegisterRoutes(admin, adminOrder.NewHandler(orders))
			adminNotification.RegisterRoutes(admin, adminNotification.NewHandler(audit, paymentService))
		}
	}

	return router, nil
}
