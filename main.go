package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charity-events/internal/cache"
	"charity-events/internal/config"
	"charity-events/internal/database"
	"charity-events/internal/database/migrations"
	"charity-events/internal/kafka"
	"charity-events/internal/logger"
	"charity-events/internal/notify"
	"charity-events/internal/server"
	"charity-events/internal/sse"
	"charity-events/internal/stats"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

func prepareSchema(ctx context.Context, bunDB *bun.DB, cfg *config.Config, log *logger.Logger) {
	if cfg.Database.Driver != database.DriverPostgres {
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to create schema: %v", err))
		}
		log.Info("DATABASE", "SQLite schema ready")
		return
	}
	if !cfg.Database.AutoMigrate {
		log.Info("DATABASE", "AUTO_MIGRATE disabled, skipping migrations")
		return
	}

	runner := migrations.NewRunner(cfg.Database.DSN, migrations.MigrateOptions{
		MigrationsDir: cfg.Database.MigrationsDir,
		SeedData:      true,
	}, log)
	defer runner.Close()
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, stats cache disabled: %v", cfg.Addr, err))
		client.Close()
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return client
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using process environment")
	}

	cfg := config.Load()
	log := logger.NewLogger(cfg.LogDir)
	defer log.Close()

	log.Info("APP", "Starting charity events service")
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	if cfg.Pass.Secret == "" {
		cfg.Pass.Secret = uuid.NewString()
		log.Warn("CONFIG", "PASS_SECRET not set, passes are signed with a random secret and stop verifying after restart")
	}
	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
	}
	defer bunDB.Close()
	prepareSchema(ctx, bunDB, cfg, log)

	hub := sse.NewHub()
	publishers := notify.Multi{}

	var statsCache stats.Cache
	if cfg.Redis.Enabled {
		if client := connectRedis(ctx, cfg.Redis, log); client != nil {
			defer client.Close()
			redisCache := cache.NewRedis(client, cfg.Redis.StatsTTL, log)
			statsCache = redisCache
			publishers = append(publishers, redisCache)
		}
	}

	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.Events, cfg.Kafka.Topics.Registrations}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
			log.Error("KAFKA", fmt.Sprintf("Failed to ensure topics: %v", err))
		}

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)
		defer producer.Close()
		publishers = append(publishers, producer)

		// Every instance relays the whole change feed to its own stream clients.
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, "charity-events-stream-"+uuid.NewString(), log)
		defer consumer.Close()
		go consumer.Run(ctx, hub)
		log.Info("KAFKA", fmt.Sprintf("Kafka enabled with brokers %v", cfg.Kafka.Brokers))
	} else {
		publishers = append(publishers, hub)
	}

	handler := server.NewRouter(server.Deps{
		DB:         bunDB,
		Config:     cfg,
		Logger:     log,
		Publisher:  publishers,
		Hub:        hub,
		StatsCache: statsCache,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Charity events service running on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	// Cancelling the base context ends open change streams.
	stopBackground()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Shutdown complete")
	}
}
