package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-spin-bot/internal/service"
)

// RankingHandler handles the public leaderboard.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// HandleLeaderboard handles the /leaderboard command.
// Displays the top 10 accounts by points.
func (h *RankingHandler) HandleLeaderboard(c tele.Context) error {
	ctx := context.Background()

	accounts, err := h.rankingService.Leaderboard(ctx, service.DefaultLeaderboardSize)
	if err != nil {
		log.Error().Err(err).Msg("Leaderboard query failed")
		return c.Reply("❌ An error occurred while fetching the leaderboard.")
	}

	if len(accounts) == 0 {
		return c.Reply("No users found.")
	}

	msg := "🏆 Leaderboard:\n\n"
	for i, account := range accounts {
		msg += fmt.Sprintf("%d. User ID: %d - Points: %d\n", i+1, account.TelegramID, account.Points)
	}

	return c.Reply(msg)
}
