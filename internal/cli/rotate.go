package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"quizhub-service/internal/config"
	"quizhub-service/internal/infra/postgres"
)

// NewRotateCmd archives the live leaderboard into the previous-period table.
// Run it from a scheduler at each period boundary.
func NewRotateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Archive the current leaderboard as the previous period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()

			if err := postgres.NewLeaderboardRepository(db).Rotate(cmd.Context()); err != nil {
				return err
			}
			log.Printf("leaderboard rotated")
			return nil
		},
	}
}
