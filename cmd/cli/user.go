package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/db"
	"github.com/sevigo/cartpilot/internal/storage"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Administers users directly in the cartpilot database",
	Long: `Administers users directly in the cartpilot database.

These commands read the service configuration (config.yaml and CARTPILOT_*
variables) and connect to the database themselves, so they must run where
the service's database is reachable.`,
}

var userTierCmd = &cobra.Command{
	Use:   "tier <user-id> <free|premium>",
	Short: "Sets a user's subscription tier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := core.Tier(args[1])
		if tier != core.TierFree && tier != core.TierPremium {
			return fmt.Errorf("unknown tier %q (expected free or premium)", args[1])
		}
		return withStore(func(store storage.Store) error {
			if err := store.SetUserTier(cmd.Context(), args[0], tier); err != nil {
				return err
			}
			successColor.Printf("✓ %s is now on the %s tier\n", args[0], tier)
			return nil
		})
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Shows a user's tier and job counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store storage.Store) error {
			user, err := store.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			titleColor.Printf("User %s\n", user.ID)
			fmt.Printf("  Tier:      %s\n", user.Tier)
			fmt.Printf("  Jobs:      %d\n", user.JobsCreated)
			fmt.Printf("  Succeeded: %s\n", successColor.Sprint(user.JobsSucceeded))
			fmt.Printf("  Failed:    %s\n", errorColor.Sprint(user.JobsFailed))
			return nil
		})
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	userCmd.AddCommand(userTierCmd, userShowCmd)
	rootCmd.AddCommand(userCmd)
}

func withStore(fn func(storage.Store) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	conn, cleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer cleanup()
	return fn(storage.NewStore(conn.DB))
}
