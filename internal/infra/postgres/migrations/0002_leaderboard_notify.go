package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0002_leaderboard_notify.sql
var leaderboardNotifySQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, leaderboardNotifySQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
				DROP TRIGGER IF EXISTS leaderboard_changes_trigger ON leaderboard;
				DROP FUNCTION IF EXISTS notify_leaderboard_changes()`)
			return err
		},
	)
}
