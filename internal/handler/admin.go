package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-spin-bot/internal/repository"
	"telegram-spin-bot/internal/service"
)

// AdminHandler handles the admin-only commands.
type AdminHandler struct {
	moderation *service.ModerationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

// HandleResetPoints handles /resetpoints <user_id>.
func (h *AdminHandler) HandleResetPoints(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, err := parseTargetID(c, "/resetpoints")
	if err != nil {
		return c.Reply(err.Error())
	}

	if err := h.moderation.ResetPoints(ctx, sender.ID, targetID); err != nil {
		return replyModerationError(c, err, "resetting points")
	}

	return c.Reply(fmt.Sprintf("✅ Points for user %d have been reset.", targetID))
}

// HandleBanUser handles /banuser <user_id>.
func (h *AdminHandler) HandleBanUser(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, err := parseTargetID(c, "/banuser")
	if err != nil {
		return c.Reply(err.Error())
	}

	if err := h.moderation.BanUser(ctx, sender.ID, targetID); err != nil {
		return replyModerationError(c, err, "banning the user")
	}

	return c.Reply(fmt.Sprintf("🚫 User %d has been banned.", targetID))
}

// HandleBroadcast handles /broadcast <text>.
func (h *AdminHandler) HandleBroadcast(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	text := strings.TrimSpace(c.Message().Payload)
	if text == "" {
		return c.Reply("❌ Usage: /broadcast <message>")
	}

	result, err := h.moderation.Broadcast(ctx, sender.ID, fmt.Sprintf("📢 Admin Message: %s", text))
	if err != nil {
		return replyModerationError(c, err, "sending the broadcast")
	}

	return c.Reply(fmt.Sprintf(
		"✅ Broadcast message sent to all users.\n- Delivered: %d\n- Failed: %d",
		result.Delivered, result.Failed,
	))
}

// HandleStats handles /stats.
func (h *AdminHandler) HandleStats(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	stats, err := h.moderation.Stats(ctx, sender.ID)
	if err != nil {
		return replyModerationError(c, err, "fetching stats")
	}

	return c.Reply(fmt.Sprintf(
		"📊 Bot Statistics:\n- Total Users: %d\n- Total Points Distributed: %d\n- Spins Today: %d",
		stats.TotalUsers, stats.TotalPointsDistributed, stats.SpinsToday,
	))
}

// parseTargetID parses the single <user_id> argument of an admin command.
func parseTargetID(c tele.Context, command string) (int64, error) {
	args := c.Args()
	if len(args) < 1 {
		return 0, fmt.Errorf("❌ Usage: %s <user_id>", command)
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errors.New("❌ User ID must be a number.")
	}

	return targetID, nil
}

// replyModerationError maps moderation failures to user-visible text.
func replyModerationError(c tele.Context, err error, action string) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.Reply("⛔ You are not authorized to use this command.")
	case errors.Is(err, repository.ErrAccountNotFound):
		return c.Reply("⚠️ User not found.")
	default:
		log.Error().Err(err).Str("action", action).Msg("Admin operation failed")
		return c.Reply(fmt.Sprintf("❌ An error occurred while %s.", action))
	}
}
