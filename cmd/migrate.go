package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job ensures the extensions table exists by running the goose migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		extensionDB, err := openExtensionDB()
		if err != nil {
			return fmt.Errorf("failed to initialize extension database: %w", err)
		}
		defer extensionDB.Close()

		log.Info().Msg("Running migrations...")
		if err := extensionDB.Migrate(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Info().Msg("Migrations complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
