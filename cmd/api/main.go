package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/allinone/backend/internal/api/handlers"
	"github.com/allinone/backend/internal/broadcast"
	"github.com/allinone/backend/internal/cache/redis"
	"github.com/allinone/backend/internal/classifier"
	"github.com/allinone/backend/internal/metrics"
	"github.com/allinone/backend/internal/middleware/ratelimit"
	"github.com/allinone/backend/internal/middleware/security"
	"github.com/allinone/backend/internal/middleware/validation"
	"github.com/allinone/backend/internal/notify"
	"github.com/allinone/backend/internal/storage/sqlite"
	"github.com/allinone/backend/internal/triage"
	"github.com/allinone/backend/pkg/config"
	appLogger "github.com/allinone/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting emergency triage API server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var signalCache classifier.SignalCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, classification caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			signalCache = redisClient
		}
	}

	var cls classifier.Classifier
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		cls = classifier.NewDelegated(classifier.Options{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Cache:       signalCache,
		})
	} else {
		appLogger.Info("Delegated classification disabled, using keyword heuristics")
		cls = classifier.NewHeuristic()
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Enabled && cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(
			cfg.Notify.WebhookURL,
			cfg.Notify.Contact,
			time.Duration(cfg.Notify.TimeoutSec)*time.Second,
		)
	}

	hub := broadcast.NewHub()
	dispatcher := broadcast.NewDispatcher(broadcast.NewRecentSet(cfg.Broadcast.RecentCap), hub)

	orchestrator := triage.NewOrchestrator(triage.Deps{
		Classifier: cls,
		Store:      sqliteClient,
		Dispatcher: dispatcher,
		Notifier:   notifier,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, OPTIONS",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use("/api/v1/emergency", limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	emergencyHandler := handlers.NewEmergencyHandler(orchestrator)
	wsHandler := handlers.NewWebSocketHandler(hub)

	api := app.Group("/api/v1")

	api.Post("/emergency", emergencyHandler.HandleSubmit)
	api.Get("/emergencies", emergencyHandler.HandleRecent)
	api.Get("/emergency/:id", emergencyHandler.HandleGet)
	api.Patch("/emergency/:id", emergencyHandler.HandleUpdate)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/ws", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ready",
			"observers": hub.Observers(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
