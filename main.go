package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"

	"ms-scheduler/internal/auth"
	"ms-scheduler/internal/clock"
	"ms-scheduler/internal/config"
	"ms-scheduler/internal/database"
	"ms-scheduler/internal/database/migrations"
	event_db "ms-scheduler/internal/events/db"
	"ms-scheduler/internal/events/event_api"
	events "ms-scheduler/internal/events/service"
	"ms-scheduler/internal/kafka"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/profiles/cache"
	profile_db "ms-scheduler/internal/profiles/db"
	"ms-scheduler/internal/profiles/profile_api"
	profiles "ms-scheduler/internal/profiles/service"
	"ms-scheduler/internal/sse"
	"ms-scheduler/internal/utils"
)

func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		logger.Info("REDIS", "Profile cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("REDIS", fmt.Sprintf("Redis unavailable at %s, running without profile cache: %v", cfg.Addr, err))
		client.Close()
		return nil
	}
	logger.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return client
}

func setupKafka(cfg config.KafkaConfig, logger *logger.Logger) *kafka.Producer {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info("KAFKA", "Event change publishing disabled")
		return nil
	}
	topics := kafka.Topics{EventCreated: cfg.Topics.EventCreated, EventUpdated: cfg.Topics.EventUpdated}
	if err := kafka.EnsureTopicsExist(cfg.Brokers, topics.All(), logger); err != nil {
		logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	logger.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Brokers))
	return kafka.NewProducer(cfg.Brokers, topics, logger)
}

func health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}

func main() {
	cfg, envLoaded := config.Load()

	logger := logger.NewLogger(cfg.LogDir)
	defer logger.Close()

	logger.Info("APP", "Starting scheduler service initialization")
	if envLoaded {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	} else {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	}

	ctx := context.Background()

	bunDB, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.Database.MigrationsDir, AutoMigrate: true}, logger)
	if err := runner.RunMigrations(); err != nil {
		logger.Fatal("MIGRATE", err.Error())
	}

	var profileCache profiles.ProfileCache
	if redisClient := connectRedis(ctx, cfg.Redis, logger); redisClient != nil {
		defer redisClient.Close()
		profileCache = cache.NewRedis(redisClient, cfg.Redis.CacheTTL)
	}

	clk := clock.NewSystem()
	profileService := profiles.NewProfileService(&profile_db.DB{Bun: bunDB}, profileCache, clk, logger)

	emitter := sse.NewEventChangeEmitter()
	eventService := events.NewEventService(&event_db.DB{Bun: bunDB}, profileService, clk, logger)
	eventService.DefaultZone = cfg.Display.DefaultTimezone
	eventService.Notifier = emitter
	if producer := setupKafka(cfg.Kafka, logger); producer != nil {
		defer producer.Close()
		eventService.Publisher = producer
	}

	profileHandler := profile_api.NewHandler(profileService, logger)
	eventHandler := event_api.NewHandler(eventService, event_api.NewSSEHandler(logger, emitter), logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.ProfileHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.Middleware())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)
		profileHandler.Routes(r)
		eventHandler.Routes(r)
	})
	logger.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
		// WriteTimeout stays unset so event streams are not cut off.
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("Scheduler service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "Scheduler service shutdown complete")
	}
}
