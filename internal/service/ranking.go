package service

import (
	"context"

	"telegram-spin-bot/internal/model"
)

// DefaultLeaderboardSize is how many accounts the leaderboard shows.
const DefaultLeaderboardSize = 10

// RankingService handles the public points leaderboard.
type RankingService struct {
	accounts AccountStore
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(accounts AccountStore) *RankingService {
	return &RankingService{accounts: accounts}
}

// Leaderboard retrieves the top accounts by points descending. An empty
// store yields an empty list, not an error.
func (s *RankingService) Leaderboard(ctx context.Context, limit int) ([]*model.Account, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return s.accounts.ListTopByPoints(ctx, limit)
}
