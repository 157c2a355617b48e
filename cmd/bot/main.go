package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vipbot/internal/ai"
	"vipbot/internal/config"
	"vipbot/internal/conversation"
	"vipbot/internal/database"
	"vipbot/internal/handler"
	"vipbot/internal/health"
	"vipbot/internal/middleware"
	"vipbot/internal/repository/postgres"
	"vipbot/internal/service"
	"vipbot/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	telemw "gopkg.in/telebot.v3/middleware"
)

// cleanupInterval is how often stale conversation states are purged
const cleanupInterval = time.Hour

func main() {
	// Bootstrap logger until the configured one is built
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger, err = newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting VIP bot",
		zap.String("run_mode", cfg.Telegram.RunMode),
		zap.String("session_backend", cfg.Session.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database with retries
	db, err := database.Connect(ctx, database.Options{
		DSN:             cfg.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations; a schema that cannot be bootstrapped is fatal
	migrator, err := database.NewMigrator(db, cfg.Database.MigrationsURL, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	vipRepo := postgres.NewVipRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	messageRepo := postgres.NewMessageRepo(db)
	broadcastRepo := postgres.NewBroadcastRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	var sessions session.Store = sessionRepo
	if cfg.Session.Backend == config.SessionMemory {
		sessions = session.NewMemory()
	}

	// Initialize services
	// The Gemini client reads its key lazily from settings, and settings
	// rebuilds the client when the admin rotates the key.
	var settingsService *service.SettingsService
	completion := ai.NewGemini(cfg.AI.Model, cfg.AI.Timeout, func(ctx context.Context) (string, error) {
		return settingsService.AIKey(ctx)
	}, logger)
	defer completion.Close()
	settingsService = service.NewSettingsService(settingsRepo, completion, logger)

	userService := service.NewUserService(userRepo, logger)
	vipService := service.NewVipService(vipRepo, logger)
	aiService := service.NewAIService(userRepo, vipRepo, settingsRepo, messageRepo, completion, logger)
	messageService := service.NewMessageService(messageRepo, logger)
	adminService := service.NewAdminService(userRepo, vipRepo, migrator, logger)
	cleanupService := service.NewCleanupService(sessionRepo, cfg.Session.TTL, logger)

	// Initialize Telegram bot. Updates are dispatched in order; the engine
	// handles each chat in the background.
	bot, err := tele.NewBot(tele.Settings{
		Token:       cfg.BotToken,
		Poller:      newPoller(cfg.Telegram),
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("chat_id", c.Sender().ID))
			}
			logger.Error("Bot error", fields...)
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized", zap.String("username", bot.Me.Username))

	messenger := handler.NewTeleMessenger(bot, logger)
	broadcastService := service.NewBroadcastService(
		userRepo, broadcastRepo, messenger, cfg.Broadcast.BatchSize, cfg.Broadcast.Pause, logger,
	)

	engine := conversation.NewEngine(conversation.Deps{
		Messenger:  messenger,
		Sessions:   sessions,
		Locker:     session.NewLocker(),
		Users:      userService,
		Vip:        vipService,
		Settings:   settingsService,
		AI:         aiService,
		Broadcasts: broadcastService,
		Messages:   messageService,
		Admin:      adminService,
		AdminID:    cfg.AdminID,
		Logger:     logger,
	})

	// Middleware
	limiter := middleware.NewRateLimiter(middleware.RateLimitOptions{
		Interval: cfg.RateLimit.Interval,
		Burst:    cfg.RateLimit.Burst,
		Exempt:   map[int64]struct{}{cfg.AdminID: {}},
	}, logger)
	bot.Use(telemw.Recover(func(err error, c tele.Context) {
		logger.Error("Recovered from panic in handler", zap.Error(err))
	}))
	bot.Use(limiter.Middleware())
	bot.Use(middleware.EnsureUser(ctx, userService, logger))

	// Initialize handler
	h := handler.NewHandler(ctx, bot, engine, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start background jobs
	if cfg.Session.Backend == config.SessionPostgres && cfg.Session.TTL > 0 {
		go runCleanupJob(ctx, cleanupService, logger)
	}
	if cfg.Health.Listen != "" {
		srv := health.NewServer(cfg.Health.Listen, health.NewHandler(db, logger), logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("Health server failed", zap.Error(err))
			}
		}()
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()

	logger.Info("Bot stopped gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Profile == config.ProfileDev {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

func newPoller(cfg config.TelegramConfig) tele.Poller {
	if cfg.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	}
	return &tele.LongPoller{Timeout: cfg.PollTimeout}
}

// runCleanupJob periodically drops conversation states nobody touched within the TTL
func runCleanupJob(ctx context.Context, cleanup *service.CleanupService, logger *zap.Logger) {
	// Run cleanup once at startup
	if err := cleanup.CleanupStaleSessions(ctx); err != nil {
		logger.Error("Failed to run initial cleanup", zap.Error(err))
	}

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup job stopped")
			return
		case <-ticker.C:
			if err := cleanup.CleanupStaleSessions(ctx); err != nil {
				logger.Error("Failed to run scheduled cleanup", zap.Error(err))
			}
		}
	}
}
