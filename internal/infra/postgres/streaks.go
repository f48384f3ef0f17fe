package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quizhub-service/internal/domain"
)

// StreakRepository implements app.StreakRepository over the streaks table.
type StreakRepository struct {
	db *bun.DB
}

func NewStreakRepository(db *bun.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

func (r *StreakRepository) Get(ctx context.Context, userID string) (domain.StreakRecord, bool, error) {
	row := new(streakRow)
	err := r.db.NewSelect().Model(row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StreakRecord{}, false, nil
	}
	if err != nil {
		return domain.StreakRecord{}, false, fmt.Errorf("select streak: %w", err)
	}
	return domain.StreakRecord{
		UserID:        row.UserID,
		CurrentStreak: row.CurrentStreak,
		LastCompleted: row.LastCompleted.UTC(),
	}, true, nil
}

func (r *StreakRepository) Upsert(ctx context.Context, rec domain.StreakRecord) error {
	row := &streakRow{
		UserID:        rec.UserID,
		CurrentStreak: rec.CurrentStreak,
		LastCompleted: rec.LastCompleted,
	}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("current_streak = EXCLUDED.current_streak").
		Set("last_completed = EXCLUDED.last_completed").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert streak: %w", err)
	}
	return nil
}
