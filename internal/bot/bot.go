package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-spin-bot/internal/config"
	"telegram-spin-bot/internal/handler"
	"telegram-spin-bot/internal/pkg/lock"
	"telegram-spin-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	accountHandler *handler.AccountHandler
	spinHandler    *handler.SpinHandler
	rankingHandler *handler.RankingHandler
	inviteHandler  *handler.InviteHandler
	adminHandler   *handler.AdminHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config            *config.Config
	SpinService       *service.SpinService
	RankingService    *service.RankingService
	ModerationService *service.ModerationService
	Accounts          BanChecker
	Referrals         *handler.PendingReferrals
	UserLock          *lock.UserLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,

		accountHandler: handler.NewAccountHandler(deps.Referrals),
		spinHandler:    handler.NewSpinHandler(deps.SpinService, deps.Referrals, deps.UserLock),
		rankingHandler: handler.NewRankingHandler(deps.RankingService),
		inviteHandler:  handler.NewInviteHandler(deps.Config.Bot.Username),
		adminHandler:   handler.NewAdminHandler(deps.ModerationService),
	}

	b.registerMiddleware(deps.Accounts)
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware(accounts BanChecker) {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(BanGuardMiddleware(accounts))
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/help", b.accountHandler.HandleHelp)
	b.bot.Handle("/spin", b.spinHandler.HandleSpin)
	b.bot.Handle("/leaderboard", b.rankingHandler.HandleLeaderboard)
	b.bot.Handle("/invite", b.inviteHandler.HandleInvite)

	// Admin handlers. The moderation service re-checks the allow-list, the
	// middleware just fails fast with the same message.
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/resetpoints", b.adminHandler.HandleResetPoints)
	adminGroup.Handle("/banuser", b.adminHandler.HandleBanUser)
	adminGroup.Handle("/broadcast", b.adminHandler.HandleBroadcast)
	adminGroup.Handle("/stats", b.adminHandler.HandleStats)

	// Reply keyboard buttons arrive as plain text.
	b.bot.Handle(tele.OnText, b.handleText)
}

// handleText routes keyboard button presses to their handlers.
func (b *Bot) handleText(c tele.Context) error {
	switch c.Text() {
	case handler.BtnSpin:
		return b.spinHandler.HandleSpin(c)
	case handler.BtnLeaderboard:
		return b.rankingHandler.HandleLeaderboard(c)
	case handler.BtnInvite:
		return b.inviteHandler.HandleInvite(c)
	case handler.BtnHelp:
		return b.accountHandler.HandleHelp(c)
	}
	return nil
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// Telebot returns the underlying telebot instance.
func (b *Bot) Telebot() *tele.Bot {
	return b.bot
}
