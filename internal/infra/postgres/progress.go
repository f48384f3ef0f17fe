package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quizhub-service/internal/domain"
)

// ProgressRepository appends completed-attempt rows; nothing updates them.
type ProgressRepository struct {
	db *bun.DB
}

func NewProgressRepository(db *bun.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) Insert(ctx context.Context, rec domain.ProgressRecord) error {
	row := &progressRow{
		ID:          rec.ID,
		UserID:      rec.UserID,
		QuizID:      rec.QuizID,
		Score:       rec.Score,
		XPEarned:    rec.XPEarned,
		CompletedAt: rec.CompletedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

// AttemptRepository appends user_attempts rows.
type AttemptRepository struct {
	db *bun.DB
}

func NewAttemptRepository(db *bun.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Insert(ctx context.Context, rec domain.AttemptRecord) error {
	row := &attemptRow{
		ID:            rec.ID,
		UserID:        rec.UserID,
		QuizID:        rec.QuizID,
		AttemptNumber: rec.AttemptNumber,
		AttemptedAt:   rec.AttemptedAt,
		Score:         rec.Score,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}
