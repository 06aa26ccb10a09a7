package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/model"
	"github.com/gravgor/landmark-cli/internal/seed"
)

var migrateSeedPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the store schema, optionally seeding landmarks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		zap.L().Info("schema applied", zap.String("driver", cfg.Store.Driver))

		if migrateSeedPath == "" {
			return nil
		}

		records, err := seed.LoadRecords(migrateSeedPath)
		if err != nil {
			return eris.Wrap(err, "load seed records")
		}
		landmarks := make([]model.Landmark, 0, len(records))
		for _, rec := range records {
			landmarks = append(landmarks, rec.Landmark)
		}

		n, err := st.SeedLandmarks(ctx, landmarks)
		if err != nil {
			return eris.Wrap(err, "seed landmarks")
		}
		zap.L().Info("landmarks seeded", zap.Int64("count", n))

		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSeedPath, "seed", "", "seed file of landmarks to load after migration (skipped when empty)")
	rootCmd.AddCommand(migrateCmd)
}
