package cli

import (
	"context"
	"fmt"

	"ecoledger/internal/emission"
	"ecoledger/internal/gateway/app"
	"ecoledger/internal/gateway/config"
	"ecoledger/internal/gateway/repository/record"
	"ecoledger/internal/seed"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the configured record store",
		Long: `Writes straight to the record store selected by DATABASE_URL or BADGER_PATH.
With neither set the in-memory store is used and the data is discarded on exit.`,
	}
	cmd.AddCommand(newSeedCentersCmd(opts), newSeedUsersCmd(opts))
	return cmd
}

func newSeedCentersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "centers",
		Short: "Replace all recycling centers with the campus defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSeeder(cmd.Context(), opts.logger(cmd.ErrOrStderr()), func(s *seed.Seeder) error {
				n, err := s.SeedCenters(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Inserted %d centers\n", n)
				return nil
			})
		},
	}
}

func newSeedUsersCmd(opts *rootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:     "users",
		Short:   "Insert sample users and their scans",
		Example: `  # Wipe the ledger and load the five sample users
  ecoctl seed users --reset`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSeeder(cmd.Context(), opts.logger(cmd.ErrOrStderr()), func(s *seed.Seeder) error {
				rep, err := s.SeedUsers(cmd.Context(), reset)
				if err != nil {
					return err
				}
				cmd.Printf("Seeded %d users with %d entries\n", rep.Users, rep.Entries)
				for _, u := range seed.SampleUsers() {
					cmd.Printf("  - %s (%.3f kg CO2)\n", u.UserID, rep.Totals[u.UserID])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "clear all scan entries and accounts first")

	return cmd
}

func withSeeder(ctx context.Context, log zerolog.Logger, fn func(*seed.Seeder) error) error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	table, err := emission.Load(cfg.EmissionTablePath)
	if err != nil {
		return fmt.Errorf("load emission table: %w", err)
	}
	store, err := app.OpenRecordStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func(s record.Store) {
		if cerr := s.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing record store")
		}
	}(store)
	return fn(seed.New(store, table, log))
}
