// Package model defines the data models for the Telegram spin bot.
package model

import "time"

// Account represents one Telegram user's game state.
// last_spin_at drives the hourly cooldown; last_spin_date drives the
// calendar-day streak. Both are written together on every successful spin.
type Account struct {
	TelegramID   int64      `db:"telegram_id"`
	Points       int64      `db:"points"`
	SpinStreak   int        `db:"spin_streak"`
	LastSpinAt   *time.Time `db:"last_spin_at"`
	LastSpinDate *time.Time `db:"last_spin_date"`
	ReferralCode string     `db:"referral_code"`
	ReferredBy   *string    `db:"referred_by"`
	IsBanned     bool       `db:"is_banned"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// HasSpun reports whether the account has ever completed a spin.
func (a *Account) HasSpun() bool {
	return a.LastSpinAt != nil
}

// SpinRecord is one row of the append-only spin ledger.
type SpinRecord struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	PointsEarned int64     `db:"points_earned"`
	StreakBonus  int64     `db:"streak_bonus"`
	Streak       int       `db:"streak"`
	CreatedAt    time.Time `db:"created_at"`
}

// Stats holds the aggregate numbers shown to admins.
type Stats struct {
	TotalUsers             int64
	TotalPointsDistributed int64
	SpinsToday             int64
}
