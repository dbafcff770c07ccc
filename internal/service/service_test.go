package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"telegram-spin-bot/internal/model"
	"telegram-spin-bot/internal/repository"
)

// fakeStore is an in-memory AccountStore with the same conditional-write
// semantics as the PostgreSQL repository.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[int64]*model.Account
	codes    map[string]int64
	ids      []int64 // creation order, for stable scans

	failNext error // injected into the next mutating call
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[int64]*model.Account),
		codes:    make(map[string]int64),
	}
}

func (f *fakeStore) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeStore) GetByID(ctx context.Context, telegramID int64) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[telegramID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (f *fakeStore) Create(ctx context.Context, telegramID int64, referralCode string, referredBy *string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	if _, ok := f.accounts[telegramID]; ok {
		return nil, repository.ErrAccountExists
	}
	if _, ok := f.codes[referralCode]; ok {
		return nil, repository.ErrReferralCodeTaken
	}
	now := time.Now()
	account := &model.Account{
		TelegramID:   telegramID,
		ReferralCode: referralCode,
		ReferredBy:   referredBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.accounts[telegramID] = account
	f.codes[referralCode] = telegramID
	f.ids = append(f.ids, telegramID)
	copied := *account
	return &copied, nil
}

func sameTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (f *fakeStore) UpdateSpin(ctx context.Context, telegramID int64, prevSpinAt *time.Time, pointsDelta int64, newStreak int, spunAt time.Time) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	account, ok := f.accounts[telegramID]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	if !sameTimePtr(account.LastSpinAt, prevSpinAt) {
		return nil, repository.ErrSpinConflict
	}
	account.Points += pointsDelta
	account.SpinStreak = newStreak
	at := spunAt
	account.LastSpinAt = &at
	account.LastSpinDate = &at
	account.UpdatedAt = spunAt
	copied := *account
	return &copied, nil
}

func (f *fakeStore) ResetPoints(ctx context.Context, telegramID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	account, ok := f.accounts[telegramID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.Points = 0
	return nil
}

func (f *fakeStore) SetBanned(ctx context.Context, telegramID int64, banned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeFailure(); err != nil {
		return err
	}
	account, ok := f.accounts[telegramID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.IsBanned = banned
	return nil
}

func (f *fakeStore) ListTopByPoints(ctx context.Context, limit int) ([]*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := make([]*model.Account, 0, len(f.ids))
	for _, id := range f.ids {
		copied := *f.accounts[id]
		accounts = append(accounts, &copied)
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Points > accounts[j].Points
	})
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

func (f *fakeStore) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.accounts)), nil
}

func (f *fakeStore) SumPoints(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, account := range f.accounts {
		sum += account.Points
	}
	return sum, nil
}

func (f *fakeStore) ListAllIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, len(f.ids))
	copy(ids, f.ids)
	return ids, nil
}

// fakeLedger records spins in memory.
type fakeLedger struct {
	mu      sync.Mutex
	records []*model.SpinRecord
	err     error
}

func (f *fakeLedger) Record(ctx context.Context, userID, pointsEarned, streakBonus int64, streak int) (*model.SpinRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec := &model.SpinRecord{
		ID:           int64(len(f.records) + 1),
		UserID:       userID,
		PointsEarned: pointsEarned,
		StreakBonus:  streakBonus,
		Streak:       streak,
		CreatedAt:    time.Now(),
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeLedger) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, rec := range f.records {
		if rec.CreatedAt.Year() == date.Year() && rec.CreatedAt.YearDay() == date.YearDay() {
			count++
		}
	}
	return count, nil
}

// fakeMessenger records deliveries and can fail for chosen recipients.
type fakeMessenger struct {
	mu       sync.Mutex
	sent     map[int64][]string
	failFor  map[int64]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		sent:    make(map[int64][]string),
		failFor: make(map[int64]bool),
	}
}

func (f *fakeMessenger) SendText(ctx context.Context, recipientID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[recipientID] {
		return errors.New("delivery failed")
	}
	f.sent[recipientID] = append(f.sent[recipientID], text)
	return nil
}

// stubSource returns fixed draws so reward math is deterministic.
type stubSource struct {
	roll   int
	chance float64
}

func (s stubSource) IntN(n int) int   { return s.roll % n }
func (s stubSource) Float64() float64 { return s.chance }
