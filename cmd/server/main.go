// Package main runs the interview bot HTTP server with webhook intake,
// session management API, dashboard WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-interview/backend/config"
	"github.com/aura-interview/backend/internal/bot"
	"github.com/aura-interview/backend/internal/history"
	"github.com/aura-interview/backend/internal/middleware"
	"github.com/aura-interview/backend/internal/realtime"
	"github.com/aura-interview/backend/internal/session"
	"github.com/aura-interview/backend/internal/webhook"
	"github.com/aura-interview/backend/internal/worker"
	"github.com/aura-interview/backend/pkg/database"
	"github.com/aura-interview/backend/pkg/queue"
	"github.com/aura-interview/backend/pkg/redis"
	"github.com/aura-interview/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Webhook.Secret == "" {
		logger.Warn("webhook secret not configured; all webhook deliveries will be rejected")
	}

	ctx := context.Background()

	// Redis is optional: without it the dashboard is single-instance and
	// session outcomes are not queued.
	var rdb *redis.Client
	var jobQueue *queue.Queue
	var pub realtime.Publisher
	var sub realtime.Subscriber
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		jobQueue = queue.NewQueue(rdb.Client, logger)
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		pub, sub = pubsub, pubsub
	}

	hub := realtime.NewHub(logger, pub, sub)
	defer hub.Close()

	registry := session.NewRegistry(logger)

	botCfg := bot.Config{
		DisplayName:      cfg.Bot.DisplayName,
		JoinTimeout:      cfg.Bot.JoinTimeout,
		ActionTimeout:    cfg.Bot.ActionTimeout,
		Questions:        cfg.Interview.Questions,
		QuestionInterval: cfg.Interview.Interval,
	}
	manager := bot.NewManager(registry, botCfg,
		bot.NewLoggingViewportFactory(logger),
		bot.NewLoggingSynthesizer(logger),
		bot.NewLoggingMediaClient(logger),
		hub, jobQueue, logger)
	botHandler := bot.NewHandler(manager, registry, logger)

	verifier := webhook.NewVerifier(cfg.Webhook.Secret)
	eventRouter := webhook.NewRouter(registry, manager, cfg.Webhook.AutoJoin, logger)
	webhookHandler := webhook.NewHandler(verifier, eventRouter, logger)

	// Postgres is optional: without it session history is disabled.
	var historyHandler *history.Handler
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Database.URL != "" && jobQueue != nil {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		historyRepo := history.NewRepository(pool)
		historyHandler = history.NewHandler(historyRepo, logger)
		go worker.NewOutcomeProcessor(historyRepo, jobQueue, logger).Run(workerCtx)
		logger.Info("session history worker started")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Security())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/", rootHandler(registry, logger))
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "active_sessions": registry.Len()})
	})

	// Webhooks (signature-verified in the handler; no operator auth)
	router.POST("/webhook", webhookHandler.Receive)

	// Session management API
	router.POST("/sessions", botHandler.CreateSession)
	router.GET("/sessions", botHandler.ListSessions)
	router.POST("/sessions/:meetingId/interview/start", botHandler.StartInterview)
	router.POST("/sessions/:meetingId/stop", botHandler.StopSession)
	if historyHandler != nil {
		router.GET("/sessions/history", historyHandler.ListRecent)
	}

	// Dashboard WebSocket
	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// rootHandler serves API info, and answers the platform's OAuth install
// redirect when a code query parameter is present.
func rootHandler(registry *session.Registry, logger *zap.Logger) gin.HandlerFunc {
	const oauthLanding = `<html>
  <body style="font-family: Arial, sans-serif; text-align: center; padding: 50px;">
    <h2>Interview Bot Connected</h2>
    <p>Authorization successful. You can close this window.</p>
  </body>
</html>`
	return func(c *gin.Context) {
		if code := c.Query("code"); code != "" {
			logger.Info("oauth code received")
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(oauthLanding))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":         "Interview Bot API",
			"status":          "running",
			"active_sessions": registry.Len(),
			"endpoints": gin.H{
				"webhook":         "POST /webhook",
				"create_session":  "POST /sessions",
				"start_interview": "POST /sessions/{meetingId}/interview/start",
				"stop_session":    "POST /sessions/{meetingId}/stop",
				"sessions":        "GET /sessions",
				"health":          "GET /health",
			},
		})
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
