package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/weather-notifier/internal/api/http"
	"github.com/i474232898/weather-notifier/internal/config"
	"github.com/i474232898/weather-notifier/internal/notify"
	"github.com/i474232898/weather-notifier/internal/scheduler"
	"github.com/i474232898/weather-notifier/internal/store"
	"github.com/i474232898/weather-notifier/internal/weather"
	"github.com/i474232898/weather-notifier/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider, err := providers.New(cfg, httpClient, zlog)
	if err != nil {
		zlog.Fatal("failed to build provider", zap.Error(err))
	}

	// In-memory store of the latest datasets and recent cycles.
	memStore := store.NewMemoryStore(cfg.StoreMaxCycles)

	sinks := notify.NewFanout(zlog, notify.Sink{Name: "store", Emitter: memStore})
	if cfg.MQTTBrokerURL != "" {
		mq, err := notify.ConnectMQTT(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopicPrefix, zlog)
		if err != nil {
			zlog.Fatal("failed to connect mqtt", zap.Error(err))
		}
		defer mq.Close()
		sinks.Add(notify.Sink{Name: "mqtt", Emitter: mq})
	}
	if cfg.RedisAddr != "" {
		rs := notify.NewRedisSink(cfg.RedisAddr, cfg.RedisChannel)
		defer func() { _ = rs.Close() }()
		sinks.Add(notify.Sink{Name: "redis", Emitter: rs})
	}

	orchestrator := weather.NewOrchestrator(provider, sinks, zlog)

	// Scheduler that re-arms itself after every cycle.
	sched := scheduler.New(orchestrator, scheduler.Intervals{
		UpdateInterval:   cfg.UpdateInterval,
		RetryDelay:       cfg.RetryDelay,
		InitialLoadDelay: cfg.InitialLoadDelay,
	},
		scheduler.WithLogger(zlog),
		scheduler.WithCycleTimeout(cfg.CycleTimeout),
		scheduler.WithObserver(memStore.ObserveCycle),
	)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-notifier",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-notifier",
			"provider": provider.Name(),
			"loaded":   sched.State().HasEverSucceeded,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Store:    memStore,
		Trigger:  sched,
		Provider: provider.Name(),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
