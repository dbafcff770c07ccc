package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-spin-bot/internal/model"
)

// ErrUnauthorized is returned when a non-admin invokes a moderation operation.
var ErrUnauthorized = errors.New("not authorized")

// BroadcastResult summarizes a best-effort fan-out.
type BroadcastResult struct {
	Delivered int
	Failed    int
}

// ModerationService implements the admin-gated mutations and aggregate
// queries. The admin allow-list is fixed at construction time.
type ModerationService struct {
	accounts  AccountStore
	ledger    SpinLedger
	messenger Messenger
	admins    map[int64]struct{}
	nowFn     func() time.Time
}

// NewModerationService creates a new ModerationService instance.
func NewModerationService(accounts AccountStore, ledger SpinLedger, messenger Messenger, adminIDs []int64) *ModerationService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &ModerationService{
		accounts:  accounts,
		ledger:    ledger,
		messenger: messenger,
		admins:    admins,
		nowFn:     time.Now,
	}
}

// IsAdmin reports whether the given user is on the allow-list.
func (s *ModerationService) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// ResetPoints zeroes the target account's points.
func (s *ModerationService) ResetPoints(ctx context.Context, requesterID, targetID int64) error {
	if !s.IsAdmin(requesterID) {
		return ErrUnauthorized
	}

	if err := s.accounts.ResetPoints(ctx, targetID); err != nil {
		return err
	}

	log.Info().
		Int64("admin_id", requesterID).
		Int64("target_id", targetID).
		Str("operation", "reset_points").
		Msg("Admin operation executed")

	return nil
}

// BanUser flags the target account as banned. The transport layer stops
// serving banned accounts; points already accrued are kept.
func (s *ModerationService) BanUser(ctx context.Context, requesterID, targetID int64) error {
	if !s.IsAdmin(requesterID) {
		return ErrUnauthorized
	}

	if err := s.accounts.SetBanned(ctx, targetID, true); err != nil {
		return err
	}

	log.Info().
		Int64("admin_id", requesterID).
		Int64("target_id", targetID).
		Str("operation", "ban_user").
		Msg("Admin operation executed")

	return nil
}

// Stats returns the aggregate numbers across all accounts. An empty store
// yields all zeroes, not an error.
func (s *ModerationService) Stats(ctx context.Context, requesterID int64) (*model.Stats, error) {
	if !s.IsAdmin(requesterID) {
		return nil, ErrUnauthorized
	}

	totalUsers, err := s.accounts.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	totalPoints, err := s.accounts.SumPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum points: %w", err)
	}

	stats := &model.Stats{
		TotalUsers:             totalUsers,
		TotalPointsDistributed: totalPoints,
	}

	if s.ledger != nil {
		spinsToday, err := s.ledger.CountForDate(ctx, s.nowFn())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to count today's spins")
		} else {
			stats.SpinsToday = spinsToday
		}
	}

	return stats, nil
}

// Broadcast fans the text out to every account. Delivery is best-effort and
// isolated per recipient; a failure for one never aborts the rest.
func (s *ModerationService) Broadcast(ctx context.Context, requesterID int64, text string) (*BroadcastResult, error) {
	if !s.IsAdmin(requesterID) {
		return nil, ErrUnauthorized
	}

	ids, err := s.accounts.ListAllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for broadcast: %w", err)
	}

	result := &BroadcastResult{}
	for _, id := range ids {
		if err := s.messenger.SendText(ctx, id, text); err != nil {
			result.Failed++
			log.Warn().Err(err).Int64("recipient_id", id).Msg("Broadcast delivery failed")
			continue
		}
		result.Delivered++
	}

	log.Info().
		Int64("admin_id", requesterID).
		Int("delivered", result.Delivered).
		Int("failed", result.Failed).
		Str("operation", "broadcast").
		Msg("Admin operation executed")

	return result, nil
}
