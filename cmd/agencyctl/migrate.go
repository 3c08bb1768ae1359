package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	agencyroot "github.com/OlegSmmDrug/agencycore.asia-sub007"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			migrationsFS, err := fs.Sub(agencyroot.MigrationsFS, "migrations")
			if err != nil {
				return fmt.Errorf("load embedded migrations: %w", err)
			}
			if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
