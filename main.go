package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"messaging-service/internal/broadcast"
	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notifier"
	"messaging-service/internal/observability"
	"messaging-service/internal/presence"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, "messaging-service", cfg.OTLPAddr)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, presence and relay disabled", zap.Error(err))
		redisClient = nil
	}

	eventBus := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.Exchange, logger)
	defer eventBus.Close()
	audit := telemetry.NewAuditEmitter(eventBus, "messaging.audit", "messaging-service", cfg.Environment, logger)

	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	hub := ws.NewHub(logger)
	broadcaster := broadcast.New(hub, redisClient, cfg.InstanceID, logger)
	go broadcaster.Run(ctx)

	presenceStore := presence.NewStore(redisClient, "messaging")
	notify := notifier.New(broadcaster, notificationRepo, logger)

	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, notify, audit)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, notify)
	presenceHandler := handlers.NewPresenceHandler(presenceStore)
	subscribeWS := ws.NewSubscribeHandler(hub, presenceStore, eventBus, cfg.JWTSecret, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messaging-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	router.GET("/contacts", authMiddleware, messageHandler.ListContacts)
	router.GET("/conversations/:user_id/messages", authMiddleware, messageHandler.ListConversation)
	router.POST("/conversations/:user_id/messages", authMiddleware, messageHandler.SendMessage)
	router.POST("/conversations/:user_id/read", authMiddleware, messageHandler.MarkRead)
	router.GET("/conversations/:user_id/unread", authMiddleware, messageHandler.UnreadCount)
	router.POST("/conversations/:user_id/typing", authMiddleware, messageHandler.Typing)

	router.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)
	router.POST("/notifications/read", authMiddleware, notificationHandler.MarkNotificationsRead)
	router.POST("/announcements", authMiddleware, notificationHandler.Announce)

	router.POST("/broadcasting/auth", authMiddleware, handlers.BroadcastingAuth)
	router.GET("/presence/:user_id", authMiddleware, presenceHandler.GetPresence)
	router.GET("/ws", subscribeWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.Debug)

	logger.Info("messaging service listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
