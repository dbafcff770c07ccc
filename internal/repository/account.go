// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-spin-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when a create races with another create
	// for the same Telegram ID.
	ErrAccountExists = errors.New("account already exists")
	// ErrReferralCodeTaken is returned when a generated referral code
	// collides with an existing one.
	ErrReferralCodeTaken = errors.New("referral code already taken")
	// ErrSpinConflict is returned when a conditional spin write loses a race:
	// last_spin_at changed between the read and the write.
	ErrSpinConflict = errors.New("concurrent spin detected")
)

const accountColumns = `telegram_id, points, spin_streak, last_spin_at, last_spin_date,
		referral_code, referred_by, is_banned, created_at, updated_at`

// AccountRepository handles account persistence.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.TelegramID,
		&a.Points,
		&a.SpinStreak,
		&a.LastSpinAt,
		&a.LastSpinDate,
		&a.ReferralCode,
		&a.ReferredBy,
		&a.IsBanned,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create creates a new account with zero points and no spin history.
// Returns ErrReferralCodeTaken if the code collides and ErrAccountExists if
// another request created the same account first.
func (r *AccountRepository) Create(ctx context.Context, telegramID int64, referralCode string, referredBy *string) (*model.Account, error) {
	const query = `
		INSERT INTO accounts (telegram_id, points, spin_streak, referral_code, referred_by, created_at, updated_at)
		VALUES ($1, 0, 0, $2, $3, NOW(), NOW())
		RETURNING ` + accountColumns

	account, err := scanAccount(r.pool.QueryRow(ctx, query, telegramID, referralCode, referredBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "accounts_referral_code_key" {
				return nil, ErrReferralCodeTaken
			}
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetByID retrieves an account by its Telegram ID.
// Returns ErrAccountNotFound if the account does not exist.
func (r *AccountRepository) GetByID(ctx context.Context, telegramID int64) (*model.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE telegram_id = $1
	`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// UpdateSpin applies the result of a successful spin as a conditional write.
// The update only lands if last_spin_at still equals prevSpinAt (NULL-safe),
// which guarantees at most one successful spin per cooldown window even under
// concurrent delivery. Returns ErrSpinConflict when the condition fails.
func (r *AccountRepository) UpdateSpin(ctx context.Context, telegramID int64, prevSpinAt *time.Time, pointsDelta int64, newStreak int, spunAt time.Time) (*model.Account, error) {
	const query = `
		UPDATE accounts
		SET points = points + $2,
		    spin_streak = $3,
		    last_spin_at = $4,
		    last_spin_date = $4,
		    updated_at = NOW()
		WHERE telegram_id = $1
		  AND last_spin_at IS NOT DISTINCT FROM $5
		RETURNING ` + accountColumns

	account, err := scanAccount(r.pool.QueryRow(ctx, query, telegramID, pointsDelta, newStreak, spunAt, prevSpinAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the account vanished or another spin won the race.
			if _, getErr := r.GetByID(ctx, telegramID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrSpinConflict
		}
		return nil, fmt.Errorf("failed to apply spin: %w", err)
	}

	return account, nil
}

// ResetPoints sets an account's points to zero.
func (r *AccountRepository) ResetPoints(ctx context.Context, telegramID int64) error {
	const query = `
		UPDATE accounts
		SET points = 0, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID)
	if err != nil {
		return fmt.Errorf("failed to reset points: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// SetBanned updates an account's ban flag.
func (r *AccountRepository) SetBanned(ctx context.Context, telegramID int64, banned bool) error {
	const query = `
		UPDATE accounts
		SET is_banned = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, banned)
	if err != nil {
		return fmt.Errorf("failed to set ban flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// ListTopByPoints retrieves the top N accounts by points descending.
func (r *AccountRepository) ListTopByPoints(ctx context.Context, limit int) ([]*model.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY points DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// CountAll returns the total number of accounts.
func (r *AccountRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// SumPoints returns the total points across all accounts, 0 when empty.
func (r *AccountRepository) SumPoints(ctx context.Context) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(points), 0) FROM accounts`).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return sum, nil
}

// ListAllIDs returns every account's Telegram ID, for fan-out operations.
func (r *AccountRepository) ListAllIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT telegram_id FROM accounts ORDER BY telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account ids: %w", err)
	}

	return ids, nil
}
