package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-spin-bot/internal/config"
	"telegram-spin-bot/internal/model"
	"telegram-spin-bot/internal/pkg/random"
	"telegram-spin-bot/internal/referral"
	"telegram-spin-bot/internal/repository"
)

const (
	// streakDay is the calendar-day window used for streak transitions.
	streakDay = 24 * time.Hour

	// maxSpinAttempts bounds the retry loop around the conditional spin write.
	maxSpinAttempts = 3

	// maxCodeAttempts bounds referral code regeneration on collision.
	maxCodeAttempts = 5
)

// ErrCodeExhausted is returned when referral code generation keeps colliding.
// With 32 bits of entropy this is vanishingly rare, but it is handled rather
// than assumed away.
var ErrCodeExhausted = errors.New("could not generate a unique referral code")

// CooldownError is returned when a spin is attempted before the cooldown
// window has elapsed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("spin on cooldown, %d minutes remaining", e.Minutes())
}

// Minutes returns the remaining wait rounded up to whole minutes.
func (e *CooldownError) Minutes() int {
	return int((e.Remaining + time.Minute - 1) / time.Minute)
}

// SpinOutcome describes the result of a successful spin.
type SpinOutcome struct {
	PointsEarned int64
	StreakBonus  int64
	TotalPoints  int64
	SpinStreak   int
	BonusSpin    bool // advisory 10% draw inviting another spin
	Banned       bool // surfaced after the reward is granted
}

// SpinService is the spin reward and streak state machine.
type SpinService struct {
	accounts AccountStore
	ledger   SpinLedger
	rng      random.Source
	cfg      config.SpinConfig
	nowFn    func() time.Time
}

// NewSpinService creates a new SpinService instance.
func NewSpinService(accounts AccountStore, ledger SpinLedger, rng random.Source, cfg config.SpinConfig) *SpinService {
	return &SpinService{
		accounts: accounts,
		ledger:   ledger,
		rng:      rng,
		cfg:      cfg,
		nowFn:    time.Now,
	}
}

// AttemptSpin runs one spin attempt for the given user, lazily creating the
// account on first contact with this operation. referredBy carries a pending
// invite code to attach at creation time, if any.
//
// A banned account still completes the spin and accrues points; the ban is
// only reported in the outcome, and the transport layer reacts to it.
func (s *SpinService) AttemptSpin(ctx context.Context, telegramID int64, referredBy *string) (*SpinOutcome, error) {
	for attempt := 0; attempt < maxSpinAttempts; attempt++ {
		account, err := s.ensureAccount(ctx, telegramID, referredBy)
		if err != nil {
			return nil, err
		}

		now := s.nowFn()

		if remaining, onCooldown := cooldownRemaining(account.LastSpinAt, now, s.cfg.Cooldown); onCooldown {
			return nil, &CooldownError{Remaining: remaining}
		}

		streak := nextStreak(account.LastSpinDate, now, account.SpinStreak)
		earned := int64(s.cfg.RewardMin + s.rng.IntN(s.cfg.RewardMax-s.cfg.RewardMin+1))
		bonus := int64(streak) * s.cfg.StreakBonusStep

		updated, err := s.accounts.UpdateSpin(ctx, telegramID, account.LastSpinAt, earned+bonus, streak, now)
		if errors.Is(err, repository.ErrSpinConflict) {
			// Lost a race with a concurrent spin; re-read and re-check the
			// cooldown, which will normally reject the duplicate.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to persist spin: %w", err)
		}

		if s.ledger != nil {
			if _, err := s.ledger.Record(ctx, telegramID, earned, bonus, streak); err != nil {
				// Non-fatal: the account write already landed.
				log.Warn().Err(err).Int64("user_id", telegramID).Msg("Failed to record spin in ledger")
			}
		}

		return &SpinOutcome{
			PointsEarned: earned,
			StreakBonus:  bonus,
			TotalPoints:  updated.Points,
			SpinStreak:   updated.SpinStreak,
			BonusSpin:    s.rng.Float64() < s.cfg.BonusChance,
			Banned:       updated.IsBanned,
		}, nil
	}

	return nil, fmt.Errorf("spin retries exhausted: %w", repository.ErrSpinConflict)
}

// ensureAccount resolves the account, creating it with a fresh referral code
// when it does not exist yet.
func (s *SpinService) ensureAccount(ctx context.Context, telegramID int64, referredBy *string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, telegramID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := referral.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate referral code: %w", err)
		}

		account, err = s.accounts.Create(ctx, telegramID, code, referredBy)
		if err == nil {
			log.Info().Int64("user_id", telegramID).Str("referral_code", code).Msg("Account created")
			return account, nil
		}
		if errors.Is(err, repository.ErrReferralCodeTaken) {
			continue
		}
		if errors.Is(err, repository.ErrAccountExists) {
			// Another request created the account first.
			return s.accounts.GetByID(ctx, telegramID)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return nil, ErrCodeExhausted
}

// cooldownRemaining reports whether the spin cooldown is still running and
// how long is left.
func cooldownRemaining(lastSpinAt *time.Time, now time.Time, cooldown time.Duration) (time.Duration, bool) {
	if lastSpinAt == nil {
		return 0, false
	}
	elapsed := now.Sub(*lastSpinAt)
	if elapsed >= cooldown {
		return 0, false
	}
	return cooldown - elapsed, true
}

// nextStreak computes the streak transition from the last spin day:
//   - never spun, or two full days or more elapsed: fresh streak of 1
//   - elapsed strictly between one and two days: consecutive-day increment
//   - otherwise (a repeat spin within the same streak-day): unchanged
//
// The unchanged branch mirrors the two non-overlapping conditions of the
// original bot. TODO: confirm with product whether a same-day repeat spin
// should instead count toward the streak.
func nextStreak(lastSpinDate *time.Time, now time.Time, current int) int {
	if lastSpinDate == nil {
		return 1
	}

	elapsed := now.Sub(*lastSpinDate)
	switch {
	case elapsed > streakDay && elapsed < 2*streakDay:
		return current + 1
	case elapsed >= 2*streakDay:
		return 1
	default:
		return current
	}
}
