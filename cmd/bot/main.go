// Package main is the entry point for the Telegram spin bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-spin-bot/internal/bot"
	"telegram-spin-bot/internal/config"
	"telegram-spin-bot/internal/handler"
	"telegram-spin-bot/internal/pkg/db"
	"telegram-spin-bot/internal/pkg/lock"
	"telegram-spin-bot/internal/pkg/random"
	"telegram-spin-bot/internal/repository"
	"telegram-spin-bot/internal/scheduler"
	"telegram-spin-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(dbPool.Pool)
	spinRepo := repository.NewSpinRepository(dbPool.Pool)

	// The messenger is bound to the bot once it exists; services only hold
	// the interface.
	messenger := bot.NewMessenger()

	// Initialize services
	spinService := service.NewSpinService(accountRepo, spinRepo, random.New(), cfg.Spin)
	rankingService := service.NewRankingService(accountRepo)
	moderationService := service.NewModerationService(accountRepo, spinRepo, messenger, cfg.Admin.IDs)

	// Initialize per-user lock and pending referral cache
	userLock := lock.NewUserLock()
	referrals := handler.NewPendingReferrals()

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:            cfg,
		SpinService:       spinService,
		RankingService:    rankingService,
		ModerationService: moderationService,
		Accounts:          accountRepo,
		Referrals:         referrals,
		UserLock:          userLock,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	messenger.Bind(telegramBot.Telebot())

	// Schedule the daily spin reminder
	reminder := scheduler.NewReminder(accountRepo, messenger)
	if cfg.Reminder.Enabled {
		hour, minute, err := cfg.ReminderTime()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid reminder time")
		}
		if err := reminder.Start(hour, minute); err != nil {
			log.Fatal().Err(err).Msg("Failed to start reminder scheduler")
		}
		defer reminder.Stop()
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create accounts table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			telegram_id BIGINT PRIMARY KEY,
			points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
			spin_streak INT NOT NULL DEFAULT 0,
			last_spin_at TIMESTAMPTZ,
			last_spin_date TIMESTAMPTZ,
			referral_code VARCHAR(16) NOT NULL UNIQUE,
			referred_by VARCHAR(16),
			is_banned BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_points ON accounts(points DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: accounts table created")

	// Migration 2: Create spins ledger table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS spins (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES accounts(telegram_id) ON DELETE CASCADE,
			points_earned BIGINT NOT NULL,
			streak_bonus BIGINT NOT NULL,
			streak INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_spins_user_time ON spins(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_spins_time ON spins(created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: spins table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
