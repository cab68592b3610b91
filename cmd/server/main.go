package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/tradeboard/suggestion-service/internal/api"
	"github.com/tradeboard/suggestion-service/internal/auth"
	"github.com/tradeboard/suggestion-service/internal/config"
	"github.com/tradeboard/suggestion-service/internal/database"
	"github.com/tradeboard/suggestion-service/internal/kafka"
	"github.com/tradeboard/suggestion-service/internal/lifecycle"
	"github.com/tradeboard/suggestion-service/internal/measure"
	"github.com/tradeboard/suggestion-service/internal/redis"
	"github.com/tradeboard/suggestion-service/internal/reward"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(cfg.Database.ConnectionString()); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("Connected to PostgreSQL database")

	// Connect to Redis
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (continuing without cache)", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Connected to Redis cache")
	}

	// Create Kafka producer for lifecycle events
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	defer producer.Close()
	log.Printf("Kafka producer initialized (brokers: %v)", cfg.Kafka.Brokers)

	// Wire the core: ledger → rewards → measurement → orchestrator
	ledger := redis.NewCachedLedger(db, redisClient)
	calculator := reward.NewCalculator(ledger, cfg.Rewards)
	engine := measure.NewEngine(db, db, db, calculator, cfg.Rewards.MeasurementWindow)
	admins := auth.NewStaticChecker(cfg.Auth)
	orchestrator := lifecycle.NewOrchestrator(db, calculator, engine, db, admins, producer)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start Kafka consumer for vote events
	votesConsumer := kafka.NewVotesConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.VotesTopic,
		cfg.Kafka.ConsumerGroup,
		db,
		calculator,
	)
	go func() {
		log.Printf("Starting Kafka votes consumer for topic: %s (group: %s-votes)",
			cfg.Kafka.VotesTopic, cfg.Kafka.ConsumerGroup)
		if err := votesConsumer.Start(ctx); err != nil {
			log.Printf("Kafka votes consumer error: %v", err)
		}
	}()

	// Create and start Kafka consumer for portfolio snapshots
	portfolioConsumer := kafka.NewPortfolioConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.PortfoliosTopic,
		cfg.Kafka.ConsumerGroup,
		db,
	)
	go func() {
		log.Printf("Starting Kafka portfolio consumer for topic: %s (group: %s-portfolios)",
			cfg.Kafka.PortfoliosTopic, cfg.Kafka.ConsumerGroup)
		if err := portfolioConsumer.Start(ctx); err != nil {
			log.Printf("Kafka portfolio consumer error: %v", err)
		}
	}()

	// Set up HTTP handler and routes
	handler := api.NewHandler(db, orchestrator, redisClient)
	router := api.SetupRoutes(handler)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Cancel context to stop Kafka consumers
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close Kafka consumers
	if err := votesConsumer.Close(); err != nil {
		log.Printf("Error closing Kafka votes consumer: %v", err)
	}
	if err := portfolioConsumer.Close(); err != nil {
		log.Printf("Error closing Kafka portfolio consumer: %v", err)
	}

	log.Println("Server stopped")
}

func runMigrations(databaseUrl string) error {
	// The "file://" prefix tells the migrate library to use the file driver
	m, err := migrate.New(
		"file://./db/migrations",
		databaseUrl)
	if err != nil {
		return err
	}

	// Apply all available migrations up to the latest version
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
