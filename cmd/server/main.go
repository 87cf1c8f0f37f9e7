package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adityatechndevoops/OliveStore/config"
	"github.com/adityatechndevoops/OliveStore/internal/api"
	"github.com/adityatechndevoops/OliveStore/internal/auth"
	"github.com/adityatechndevoops/OliveStore/internal/broker"
	"github.com/adityatechndevoops/OliveStore/internal/objectstore"
	"github.com/adityatechndevoops/OliveStore/internal/redisclient"
	"github.com/adityatechndevoops/OliveStore/internal/service"
	"github.com/adityatechndevoops/OliveStore/internal/store"
	"github.com/adityatechndevoops/OliveStore/internal/util"
	"github.com/adityatechndevoops/OliveStore/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting OliveStore", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	ctx := context.Background()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	logger.Info("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	storage, err := objectstore.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer orderProducer.Close()
	storeProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicStore)
	defer storeProducer.Close()
	logger.Info("Kafka producers initialized")

	eventPublisher := broker.NewEventPublisher(orderProducer, storeProducer)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	services := api.Services{
		Auth: service.NewAuthService(db, tokens, redisClient, service.LoginLimit{
			Attempts: cfg.Auth.LoginRateLimit,
			Window:   cfg.Auth.LoginRateWindow,
		}),
		Users:    service.NewUserService(db),
		Stores:   service.NewStoreService(db, db, storage, eventPublisher),
		Products: service.NewProductService(db, db, storage),
		Orders: service.NewOrderService(db, db, eventPublisher, redisClient, service.OrderOptions{
			MaxIDAttempts:  cfg.Business.OrderIDMaxAttempts,
			IdempotencyTTL: cfg.Business.IdempotencyTTL,
		}),
		Dashboard: service.NewDashboardService(db, redisClient, cfg.Business.DashboardCacheTTL),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	eventWorker := worker.NewEventWorker(db, redisClient,
		broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup),
		broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicStore, cfg.Kafka.ConsumerGroup),
	)
	go func() {
		if err := eventWorker.Start(workerCtx); err != nil {
			logger.Error("Event worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, map[string]api.Pinger{
		"postgres": db,
		"redis":    redisClient,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := eventWorker.Stop(); err != nil {
		logger.Warn("Error stopping event worker", zap.Error(err))
	}

	logger.Info("Server exited")
}
