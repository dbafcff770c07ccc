// Package service provides business logic implementations.
package service

import (
	"context"
	"time"

	"telegram-spin-bot/internal/model"
)

// AccountStore is the persistence surface the services operate through.
// *repository.AccountRepository is the production implementation.
type AccountStore interface {
	GetByID(ctx context.Context, telegramID int64) (*model.Account, error)
	Create(ctx context.Context, telegramID int64, referralCode string, referredBy *string) (*model.Account, error)
	// UpdateSpin is a conditional write: it must fail with
	// repository.ErrSpinConflict when last_spin_at no longer equals prevSpinAt.
	UpdateSpin(ctx context.Context, telegramID int64, prevSpinAt *time.Time, pointsDelta int64, newStreak int, spunAt time.Time) (*model.Account, error)
	ResetPoints(ctx context.Context, telegramID int64) error
	SetBanned(ctx context.Context, telegramID int64, banned bool) error
	ListTopByPoints(ctx context.Context, limit int) ([]*model.Account, error)
	CountAll(ctx context.Context) (int64, error)
	SumPoints(ctx context.Context) (int64, error)
	ListAllIDs(ctx context.Context) ([]int64, error)
}

// SpinLedger records completed spins. Ledger writes are best-effort; a failed
// append never fails the spin itself.
type SpinLedger interface {
	Record(ctx context.Context, userID, pointsEarned, streakBonus int64, streak int) (*model.SpinRecord, error)
	CountForDate(ctx context.Context, date time.Time) (int64, error)
}

// Messenger delivers outbound text through the messaging gateway.
// The bot layer implements it on top of telebot.
type Messenger interface {
	SendText(ctx context.Context, recipientID int64, text string) error
}
