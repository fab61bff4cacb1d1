package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "shadowlurkers-backend/internal/api/http"
	"shadowlurkers-backend/internal/bot"
	"shadowlurkers-backend/internal/config"
	"shadowlurkers-backend/internal/domain"
	"shadowlurkers-backend/internal/jobs"
	"shadowlurkers-backend/internal/logger"
	"shadowlurkers-backend/internal/repository/postgres"
	"shadowlurkers-backend/internal/scheduler"
	"shadowlurkers-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	// A local .env is optional; real deployments set the environment directly.
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
	logger.Info("Starting Shadow Lurkers backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "frontend_url", cfg.Server.FrontendURL)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Telegram client
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("Failed to initialize Telegram client", "error", err)
		log.Fatalf("Failed to initialize Telegram client: %v", err)
	}
	logger.Info("Telegram client authorized", "bot_username", api.Self.UserName)
	adapter := bot.NewTelegramAdapter(api)

	// Initialize Services
	emailSender := service.NewSendGridSender(cfg.Email.APIKey, cfg.Email.From, cfg.Email.FromName)
	notifierSvc := service.NewNotifierService(store.OutboxRepository, emailSender, adapter,
		cfg.Outbox.MaxAttempts, cfg.Outbox.BatchSize)
	initiateSvc := service.NewInitiateService(store.InitiateRepository, store.WarningRepository,
		store.TicketRepository, notifierSvc, cfg.Telegram.OwnerID)
	moderationSvc := service.NewModerationService(store.MemberRepository, store.WarningRepository,
		store.ElderRepository, adapter, cfg.Telegram.OwnerID)
	supportSvc := service.NewSupportService(store.TicketRepository, notifierSvc, cfg.Telegram.OwnerID)
	assistantSvc := service.NewAssistantService(store.ChatSettingRepository,
		cfg.Assistant.BaseURL, cfg.Assistant.APIKey, cfg.Assistant.Model)
	validator := service.NewEmailValidator(cfg.Email.ValidatorURL)

	// The owner always holds the top rank; rebind it on every start so a fresh
	// database needs no manual seeding.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = store.ElderRepository.Upsert(seedCtx, &domain.Elder{
		UserID:    cfg.Telegram.OwnerID,
		Rank:      domain.RankVeilKeeper,
		GrantedBy: cfg.Telegram.OwnerID,
	})
	seedCancel()
	if err != nil {
		logger.Error("Failed to seed owner elder record", "error", err)
		log.Fatalf("Failed to seed owner elder record: %v", err)
	}

	// Initialize HTTP API
	router := httpapi.NewRouter(initiateSvc, validator)
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP API listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	// Initialize bot update loop
	handler := bot.NewBotHandler(api, initiateSvc, moderationSvc, supportSvc,
		notifierSvc, assistantSvc, cfg.Telegram.OwnerID, cfg.Server.FrontendURL)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)
	go handler.Run(updates)
	logger.Info("Bot update loop started", "owner_id", cfg.Telegram.OwnerID)

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(store, notifierSvc, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	api.StopReceivingUpdates()
	cronScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Shutdown complete. The Veil closes.")
}
