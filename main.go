package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinpay-backend/config"
	"coinpay-backend/internal/api"
	"coinpay-backend/internal/database"
	"coinpay-backend/internal/models"
	"coinpay-backend/internal/payment/coinpay"
	"coinpay-backend/internal/services"
	"coinpay-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if _, err := database.Connect(cfg); err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Fatal("failed to connect redis", zap.Error(err))
	}

	// Migrate the schema
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.PaymentOrder{},
		&models.Transaction{},
		&models.PaymentConfig{},
		&models.NotificationLog{},
	); err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}

	seedPaymentConfig(cfg)

	router, err := api.NewRouter(cfg)
	if err != nil {
		logger.Log.Fatal("failed to create router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
	}
}

// seedPaymentConfig creates the coinpay row from the environment on first start.
func seedPaymentConfig(cfg *config.Config) {
	if cfg.CoinPayAppID == "" || cfg.CoinPaySecret == "" {
		logger.Log.Warn("COINPAY_APP_ID or COINPAY_SECRET not set, skipping provider seed")
		return
	}

	store := services.NewGormConfigStore(database.DB)
	created, err := store.Seed(context.Background(), coinpay.Name, coinpay.ReadableName, map[string]interface{}{
		"app_id":      cfg.CoinPayAppID,
		"secret":      cfg.CoinPaySecret,
		"gateway_url": cfg.CoinPayGatewayURL,
	})
	if err != nil {
		logger.Log.Fatal("failed to seed payment config", zap.Error(err))
	}
	if created {
		logger.Log.Info("payment provider seeded", zap.String("provider", coinpay.Name))
	}
}
