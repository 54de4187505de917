package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/config"
	"veggiemarket/internal/database"
	"veggiemarket/internal/logger"
	"veggiemarket/internal/server"
	"veggiemarket/internal/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting marketplace API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	db, err := database.Open(cfg.Store)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	// Migrations only run when the store answers; an unreachable store is a
	// degraded start, not a failed one.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if pingErr := db.PingContext(ctx); pingErr == nil {
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	} else {
		log.Warn("Store unreachable at startup, skipping migrations", zap.Error(pingErr))
	}
	cancel()

	controller := catalog.NewController(
		store.NewCatalog(store.New(db)),
		catalog.NewProvider(),
		catalog.Session{
			BuyerID:  mustSessionID(cfg.Session.BuyerID, log),
			SellerID: mustSessionID(cfg.Session.SellerID, log),
		},
		cfg.Catalog.PlaceholderImage,
		logger.Component(log, "catalog"),
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := controller.Initialize(initCtx); err != nil {
		log.Fatal("Failed to initialize catalog", zap.Error(err))
	}
	initCancel()
	log.Info("Catalog initialized", zap.String("mode", string(controller.Mode())))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled", zap.Error(err))
		redisClient.Close()
		redisClient = nil
	}
	pingCancel()

	srv := server.NewServer(cfg, log, db, redisClient, controller)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}

func mustSessionID(raw string, log *zap.Logger) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Fatal("Invalid session identity", zap.String("id", raw), zap.Error(err))
	}
	return id
}
