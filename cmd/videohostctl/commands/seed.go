package commands

import (
	"fmt"

	"github.com/localnerve/videohost/internal/database"
	"github.com/spf13/cobra"
)

var skipMigrate bool

// seedCmd inserts the embedded starter data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the starter accounts and tags",
	Long: `Insert the admin and sample user accounts and the starter tags. Existing
accounts and tags, matched by email and name, are left untouched.

Examples:
  videohostctl seed
  videohostctl seed --skip-migrate --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := open()
		if err != nil {
			return err
		}
		defer e.close()

		if !skipMigrate {
			if err := database.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
		}

		sd, err := database.LoadSeedData()
		if err != nil {
			return err
		}
		inserted, err := database.Seed(e.db, sd, e.log)
		if err != nil {
			return err
		}

		if ok, err := printJSON(map[string]int64{"inserted": inserted}); ok {
			return err
		}
		fmt.Printf("Seed applied, %d rows inserted.\n", inserted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run migrations first")
}
