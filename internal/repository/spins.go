package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-spin-bot/internal/model"
)

// SpinRepository handles the append-only spin ledger.
type SpinRepository struct {
	pool *pgxpool.Pool
}

// NewSpinRepository creates a new SpinRepository instance.
func NewSpinRepository(pool *pgxpool.Pool) *SpinRepository {
	return &SpinRepository{pool: pool}
}

// Record appends one spin to the ledger.
func (r *SpinRepository) Record(ctx context.Context, userID, pointsEarned, streakBonus int64, streak int) (*model.SpinRecord, error) {
	const query = `
		INSERT INTO spins (user_id, points_earned, streak_bonus, streak, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, user_id, points_earned, streak_bonus, streak, created_at
	`

	var rec model.SpinRecord
	err := r.pool.QueryRow(ctx, query, userID, pointsEarned, streakBonus, streak).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PointsEarned,
		&rec.StreakBonus,
		&rec.Streak,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record spin: %w", err)
	}

	return &rec, nil
}

// GetByUserID retrieves a user's most recent spins, newest first.
func (r *SpinRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.SpinRecord, error) {
	const query = `
		SELECT id, user_id, points_earned, streak_bonus, streak, created_at
		FROM spins
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get spins: %w", err)
	}
	defer rows.Close()

	var records []*model.SpinRecord
	for rows.Next() {
		var rec model.SpinRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.PointsEarned,
			&rec.StreakBonus,
			&rec.Streak,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spin: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spins: %w", err)
	}

	return records, nil
}

// CountForDate returns the number of spins recorded on the given calendar day.
func (r *SpinRepository) CountForDate(ctx context.Context, date time.Time) (int64, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	const query = `
		SELECT COUNT(*)
		FROM spins
		WHERE created_at >= $1 AND created_at < $2
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, startOfDay, endOfDay).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count spins: %w", err)
	}

	return count, nil
}
