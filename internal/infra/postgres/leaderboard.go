package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quizhub-service/internal/domain"
)

// LeaderboardRepository implements app.LeaderboardRepository over the
// leaderboard and previous_leaderboard tables.
type LeaderboardRepository struct {
	db *bun.DB
}

func NewLeaderboardRepository(db *bun.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) GetEntry(ctx context.Context, userID string) (domain.LeaderboardEntry, bool, error) {
	row := new(leaderboardRow)
	err := r.db.NewSelect().Model(row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LeaderboardEntry{}, false, nil
	}
	if err != nil {
		return domain.LeaderboardEntry{}, false, fmt.Errorf("select leaderboard entry: %w", err)
	}
	return domain.LeaderboardEntry{UserID: row.UserID, TotalXP: row.TotalXP}, true, nil
}

// UpsertTotal writes the absolute cumulative XP keyed by user id. Retrying
// the same pair lands on the same row with the same value.
func (r *LeaderboardRepository) UpsertTotal(ctx context.Context, entry domain.LeaderboardEntry) error {
	row := &leaderboardRow{UserID: entry.UserID, TotalXP: entry.TotalXP}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("total_xp = EXCLUDED.total_xp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := r.db.NewSelect().Model(&rows).Order("total_xp DESC").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard top: %w", err)
	}
	return currentEntries(rows), nil
}

func (r *LeaderboardRepository) All(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := r.db.NewSelect().Model(&rows).Order("total_xp DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	return currentEntries(rows), nil
}

func (r *LeaderboardRepository) PreviousTop(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []previousLeaderboardRow
	err := r.db.NewSelect().Model(&rows).Order("total_xp DESC").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select previous leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{UserID: row.UserID, TotalXP: row.TotalXP})
	}
	return entries, nil
}

// Rotate archives the current standings into previous_leaderboard, replacing
// whatever period was there, and leaves the live table untouched.
func (r *LeaderboardRepository) Rotate(ctx context.Context) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewTruncateTable().Model((*previousLeaderboardRow)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate previous leaderboard: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO previous_leaderboard (user_id, total_xp) SELECT user_id, total_xp FROM leaderboard`)
		if err != nil {
			return fmt.Errorf("copy leaderboard: %w", err)
		}
		return nil
	})
}

func currentEntries(rows []leaderboardRow) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{UserID: row.UserID, TotalXP: row.TotalXP})
	}
	return entries
}
