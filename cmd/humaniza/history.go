package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RichardoC/humaniza/internal/db"
)

func historyCmd(env envFunc) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear an owner's rewrite history",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", "", "owner (user) id")
	_ = cmd.MarkPersistentFlagRequired("owner")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the owner's history as JSON, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}
			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, database, _, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			records, err := store.List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(records, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every history record of the owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}
			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			store, database, _, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := store.Clear(cmd.Context(), owner); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "history cleared for %s\n", owner)
			return nil
		},
	}

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Print how many records the owner has in the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" {
				return errors.New("--owner is required")
			}
			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			database, err := db.New(cfg.DatabaseDriver, cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := database.CountRecords(cmd.Context(), owner)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.AddCommand(listCmd, clearCmd, countCmd)
	return cmd
}
