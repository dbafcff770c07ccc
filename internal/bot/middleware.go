// Package bot provides the Telegram bot initialization, middleware and
// handler registration.
package bot

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-spin-bot/internal/config"
	"telegram-spin-bot/internal/model"
	"telegram-spin-bot/internal/repository"
)

// BanChecker looks up an account for the transport-level ban guard.
type BanChecker interface {
	GetByID(ctx context.Context, telegramID int64) (*model.Account, error)
}

// BanGuardMiddleware blocks banned accounts at the transport layer. Unknown
// users pass through untouched (accounts are created lazily on first spin),
// and lookups that fail are let through rather than locking everyone out.
func BanGuardMiddleware(accounts BanChecker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			account, err := accounts.GetByID(context.Background(), sender.ID)
			if err != nil {
				if !errors.Is(err, repository.ErrAccountNotFound) {
					log.Warn().Err(err).Int64("user_id", sender.ID).Msg("Ban check failed")
				}
				return next(c)
			}

			if account.IsBanned {
				log.Debug().Int64("user_id", sender.ID).Msg("Ignoring command from banned user")
				return c.Reply("🚫 You are banned from using this bot.")
			}

			return next(c)
		}
	}
}

// AdminMiddleware rejects admin commands from users outside the allow-list.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("⛔ You are not authorized to use this command.")
			}

			return next(c)
		}
	}
}

// LoggingMiddleware logs all incoming messages.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug()
			if sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received message")

			return next(c)
		}
	}
}

// RecoveryMiddleware recovers from panics in handlers.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Msg("Recovered from panic in handler")
					_ = c.Reply("Something went wrong. Please try again.")
				}
			}()
			return next(c)
		}
	}
}
