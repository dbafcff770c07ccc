package handler

import (
	"fmt"

	tele "gopkg.in/telebot.v3"
)

// InviteHandler handles the /invite command.
type InviteHandler struct {
	botUsername string
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(botUsername string) *InviteHandler {
	return &InviteHandler{botUsername: botUsername}
}

// InviteLink builds the deep link that credits the inviter.
func (h *InviteHandler) InviteLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", h.botUsername, userID)
}

// HandleInvite handles the /invite command and the 👥 Invite Friends button.
func (h *InviteHandler) HandleInvite(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	return c.Reply(fmt.Sprintf("👥 Invite your friends using this link: %s", h.InviteLink(sender.ID)))
}
