package commands

import (
	"fmt"

	"github.com/localnerve/videohost/internal/database"
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Run GORM auto-migrations for every table. Safe to run repeatedly.

Examples:
  videohostctl migrate
  videohostctl migrate -f prod.env`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := open()
		if err != nil {
			return err
		}
		defer e.close()

		if err := database.AutoMigrate(e.db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Schema is up to date.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
