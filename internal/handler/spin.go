package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-spin-bot/internal/pkg/lock"
	"telegram-spin-bot/internal/service"
)

// SpinHandler handles the /spin command.
type SpinHandler struct {
	spinService *service.SpinService
	referrals   *PendingReferrals
	userLock    *lock.UserLock
}

// NewSpinHandler creates a new SpinHandler.
func NewSpinHandler(spinService *service.SpinService, referrals *PendingReferrals, userLock *lock.UserLock) *SpinHandler {
	return &SpinHandler{
		spinService: spinService,
		referrals:   referrals,
		userLock:    userLock,
	}
}

// HandleSpin handles the /spin command and the 🎰 Spin keyboard button.
func (h *SpinHandler) HandleSpin(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	var referredBy *string
	if code, ok := h.referrals.Take(sender.ID); ok {
		referredBy = &code
	}

	// Serialize spins per user so double-delivered commands queue up and the
	// second one lands on the cooldown error.
	h.userLock.Lock(sender.ID)
	outcome, err := h.spinService.AttemptSpin(ctx, sender.ID, referredBy)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		var cooldown *service.CooldownError
		if errors.As(err, &cooldown) {
			return c.Reply(fmt.Sprintf("You can spin again in %d minutes.", cooldown.Minutes()))
		}
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Spin failed")
		return c.Reply("Something went wrong. Please try again.")
	}

	if err := c.Reply(fmt.Sprintf(
		"🎉 *Congrats!* You earned *%d points* and a streak bonus of *%d points*! Your total is now *%d points*.",
		outcome.PointsEarned, outcome.StreakBonus, outcome.TotalPoints,
	), tele.ModeMarkdown); err != nil {
		return err
	}

	if outcome.BonusSpin {
		if err := c.Reply("🎁 Lucky you! You get a bonus spin! Use /spin again."); err != nil {
			return err
		}
	}

	if outcome.Banned {
		return c.Reply("🚫 You are banned from using this bot.")
	}

	return nil
}
