package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bank-backend/config"
	"bank-backend/internal/api"
	"bank-backend/internal/database"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(logger.FromAppConfig(cfg)); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)
	utils.InitJWT(cfg)
	services.Configure(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	if _, err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Fatal("Failed to connect redis", zap.Error(err))
	}
	if database.RedisClient == nil {
		logger.Log.Warn("Redis disabled: cache, token denylist and shared rate limiting are off")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminNationalID); err != nil {
		logger.Log.Fatal("Failed to create admin user", zap.Error(err))
	}

	if cfg.QueuedSettlement() {
		go services.StartSettlementWorker(ctx)
	}
	if _, err := services.StartSettlementSweeper(ctx, cfg.SettlementSweepSchedule, cfg.SettlementStaleAfter); err != nil {
		logger.Log.Fatal("Failed to start settlement sweeper", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(cfg),
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("settlement_mode", cfg.SettlementMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	if database.RedisClient != nil {
		database.RedisClient.Close()
	}
	logger.Log.Info("Server exited")
}
