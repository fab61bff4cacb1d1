package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"shadowlurkers-backend/internal/bot"
	"shadowlurkers-backend/internal/config"
	"shadowlurkers-backend/internal/jobs"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository/postgres"
	"shadowlurkers-backend/internal/scheduler"
	"shadowlurkers-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sweep-outbox', 'pending-digest', 'prune-outbox', 'all')")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Shadow Lurkers cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = postgres.EnsureSchema(schemaCtx, db)
	schemaCancel()
	if err != nil {
		logger.Error("Failed to ensure database schema", "error", err)
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// The sweep needs both delivery transports, so the runner authorizes
	// against Telegram just like the server does.
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("Failed to initialize Telegram client", "error", err)
		log.Fatalf("Failed to initialize Telegram client: %v", err)
	}
	adapter := bot.NewTelegramAdapter(api)

	emailSender := service.NewSendGridSender(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	notifierSvc := service.NewNotifierService(store.OutboxRepository, emailSender, adapter,
		cfg.Outbox.MaxAttempts, cfg.Outbox.BatchSize)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, notifierSvc, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "sweep-outbox":
		jobRunner.SweepOutbox()
	case "pending-digest":
		jobRunner.SendPendingDigest()
	case "prune-outbox":
		jobRunner.PruneOutbox()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - sweep-outbox\n")
		fmt.Printf("  - pending-digest\n")
		fmt.Printf("  - prune-outbox\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
