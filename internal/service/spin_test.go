package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-spin-bot/internal/config"
	"telegram-spin-bot/internal/repository"
)

func testSpinConfig() config.SpinConfig {
	return config.SpinConfig{
		Cooldown:        time.Hour,
		RewardMin:       1,
		RewardMax:       100,
		StreakBonusStep: 10,
		BonusChance:     0.1,
	}
}

// newTestSpinService builds a SpinService over the fake store with a frozen
// clock and a fixed reward roll.
func newTestSpinService(store *fakeStore, ledger *fakeLedger, roll int, chance float64, now time.Time) *SpinService {
	var l SpinLedger
	if ledger != nil {
		l = ledger
	}
	s := NewSpinService(store, l, stubSource{roll: roll, chance: chance}, testSpinConfig())
	s.nowFn = func() time.Time { return now }
	return s
}

func TestAttemptSpin_FirstSpinCreatesAccount(t *testing.T) {
	store := newFakeStore()
	ledger := &fakeLedger{}
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// roll=41 -> pointsEarned = 1 + 41 = 42
	svc := newTestSpinService(store, ledger, 41, 0.5, t0)

	outcome, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), outcome.PointsEarned)
	assert.Equal(t, int64(10), outcome.StreakBonus)
	assert.Equal(t, int64(52), outcome.TotalPoints)
	assert.Equal(t, 1, outcome.SpinStreak)
	assert.False(t, outcome.BonusSpin)
	assert.False(t, outcome.Banned)

	account, err := store.GetByID(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(52), account.Points)
	assert.Equal(t, 1, account.SpinStreak)
	require.NotNil(t, account.LastSpinAt)
	assert.True(t, account.LastSpinAt.Equal(t0))
	require.NotNil(t, account.LastSpinDate)
	assert.True(t, account.LastSpinDate.Equal(t0))
	assert.True(t, account.HasSpun())
	assert.Len(t, account.ReferralCode, 8)

	// Ledger got exactly one record
	require.Len(t, ledger.records, 1)
	assert.Equal(t, int64(42), ledger.records[0].PointsEarned)
	assert.Equal(t, int64(10), ledger.records[0].StreakBonus)
}

func TestAttemptSpin_ReferredByAttachedAtCreation(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	inviter := "ABCD1234"
	_, err := svc.AttemptSpin(context.Background(), 1001, &inviter)
	require.NoError(t, err)

	account, err := store.GetByID(context.Background(), 1001)
	require.NoError(t, err)
	require.NotNil(t, account.ReferredBy)
	assert.Equal(t, inviter, *account.ReferredBy)
}

func TestAttemptSpin_Cooldown(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	_, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)

	tests := []struct {
		name        string
		at          time.Time
		wantMinutes int
	}{
		{"1 minute later", t0.Add(time.Minute), 59},
		{"59 minutes later", t0.Add(59 * time.Minute), 1},
		{"59m30s later", t0.Add(59*time.Minute + 30*time.Second), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.nowFn = func() time.Time { return tt.at }
			_, err := svc.AttemptSpin(context.Background(), 1001, nil)
			var cooldown *CooldownError
			require.ErrorAs(t, err, &cooldown)
			assert.Equal(t, tt.wantMinutes, cooldown.Minutes())
		})
	}

	// No mutation happened on the cooldown path
	account, err := store.GetByID(context.Background(), 1001)
	require.NoError(t, err)
	assert.True(t, account.LastSpinAt.Equal(t0))

	// At 61 minutes the spin succeeds again
	svc.nowFn = func() time.Time { return t0.Add(61 * time.Minute) }
	_, err = svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
}

func TestAttemptSpin_SameDayRepeatKeepsStreak(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 41, 0.5, t0)

	first, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SpinStreak)
	assert.Equal(t, first.PointsEarned+10, first.TotalPoints)

	// Two hours later: past the cooldown, still the same streak-day.
	svc.nowFn = func() time.Time { return t0.Add(2 * time.Hour) }
	second, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SpinStreak)
	assert.Equal(t, int64(10), second.StreakBonus)
	assert.Equal(t, first.TotalPoints+second.PointsEarned+10, second.TotalPoints)
}

func TestAttemptSpin_NextDayIncrementsStreak(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	_, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)

	// 36 hours later: inside the (1d, 2d) window.
	svc.nowFn = func() time.Time { return t0.Add(36 * time.Hour) }
	outcome, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.SpinStreak)
	assert.Equal(t, int64(20), outcome.StreakBonus)
}

func TestAttemptSpin_LongGapResetsStreak(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	_, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	svc.nowFn = func() time.Time { return t0.Add(36 * time.Hour) }
	outcome, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	require.Equal(t, 2, outcome.SpinStreak)

	// Three days of silence: streak starts over at 1.
	svc.nowFn = func() time.Time { return t0.Add(36 * time.Hour).Add(72 * time.Hour) }
	outcome, err = svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SpinStreak)
	assert.Equal(t, int64(10), outcome.StreakBonus)
}

func TestAttemptSpin_BonusSpinDraw(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	svc := newTestSpinService(newFakeStore(), nil, 0, 0.05, t0)
	outcome, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.True(t, outcome.BonusSpin, "a draw below the threshold grants a bonus spin")

	svc = newTestSpinService(newFakeStore(), nil, 0, 0.95, t0)
	outcome, err = svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.False(t, outcome.BonusSpin)
}

func TestAttemptSpin_BannedAccountStillSpins(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	_, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	require.NoError(t, store.SetBanned(context.Background(), 1001, true))

	svc.nowFn = func() time.Time { return t0.Add(2 * time.Hour) }
	outcome, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.True(t, outcome.Banned)
	assert.Greater(t, outcome.PointsEarned, int64(0), "reward is granted before the ban is surfaced")
}

func TestAttemptSpin_ConflictRetriesAndHitsCooldown(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	_, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)

	// A concurrent spin moved last_spin_at between our read and write: the
	// conditional write fails, the retry re-reads and lands on the cooldown.
	svc.nowFn = func() time.Time { return t0.Add(2 * time.Hour) }
	store.failNext = repository.ErrSpinConflict
	_, err = svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err, "retry after a lost race succeeds once the cooldown allows it")
}

func TestAttemptSpin_LedgerFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	ledger := &fakeLedger{err: errors.New("ledger down")}
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, ledger, 0, 0.5, t0)

	outcome, err := svc.AttemptSpin(context.Background(), 1001, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), outcome.TotalPoints)
}

func TestAttemptSpin_ReferralCodesAreUnique(t *testing.T) {
	store := newFakeStore()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSpinService(store, nil, 0, 0.5, t0)

	const n = 50
	seen := make(map[string]bool, n)
	for i := int64(0); i < n; i++ {
		_, err := svc.AttemptSpin(context.Background(), 2000+i, nil)
		require.NoError(t, err)
		account, err := store.GetByID(context.Background(), 2000+i)
		require.NoError(t, err)
		assert.False(t, seen[account.ReferralCode], "referral code %q assigned twice", account.ReferralCode)
		seen[account.ReferralCode] = true
	}
	assert.Len(t, seen, n)
}
