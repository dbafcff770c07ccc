package bot

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v3"
)

// Messenger implements outbound delivery on top of telebot. It is created
// unbound so services can hold it before the bot itself exists, and bound
// once the bot is up.
type Messenger struct {
	bot *tele.Bot
}

// NewMessenger creates an unbound Messenger.
func NewMessenger() *Messenger {
	return &Messenger{}
}

// Bind attaches the live bot instance.
func (m *Messenger) Bind(bot *tele.Bot) {
	m.bot = bot
}

// SendText delivers plain text to a user by Telegram ID.
func (m *Messenger) SendText(ctx context.Context, recipientID int64, text string) error {
	if m.bot == nil {
		return errors.New("messenger is not bound to a bot")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.bot.Send(&tele.User{ID: recipientID}, text)
	return err
}
