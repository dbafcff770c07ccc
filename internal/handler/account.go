package handler

import (
	tele "gopkg.in/telebot.v3"
)

// Button labels for the persistent reply keyboard.
const (
	BtnSpin        = "🎰 Spin"
	BtnLeaderboard = "🏆 Leaderboard"
	BtnInvite      = "👥 Invite Friends"
	BtnHelp        = "ℹ️ Help"
)

// AccountHandler handles /start and /help. Neither command creates an
// account; accounts only come into existence on the first spin.
type AccountHandler struct {
	referrals *PendingReferrals
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(referrals *PendingReferrals) *AccountHandler {
	return &AccountHandler{referrals: referrals}
}

// CommandMenu builds the persistent reply keyboard shown on /start.
func CommandMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(BtnSpin), menu.Text(BtnLeaderboard)),
		menu.Row(menu.Text(BtnInvite), menu.Text(BtnHelp)),
	)
	return menu
}

// HandleStart handles the /start command. A deep-link payload is treated as
// an inviter reference and parked until the first spin.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if payload := c.Message().Payload; payload != "" {
		h.referrals.Put(sender.ID, payload)
	}

	return c.Reply("Welcome to the Spin Bot! Choose an option:", CommandMenu())
}

// HandleHelp handles the /help command.
func (h *AccountHandler) HandleHelp(c tele.Context) error {
	return c.Reply("Here are the available commands:\n" +
		"/spin - Spin to earn points\n" +
		"/leaderboard - View the top players\n" +
		"/invite - Invite friends to earn bonuses\n" +
		"/help - Get this list of commands")
}
