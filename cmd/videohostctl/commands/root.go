// Package commands holds the videohostctl operator commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/database"
	"github.com/localnerve/videohost/internal/logger"
	"github.com/localnerve/videohost/internal/media"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	envFile    string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "videohostctl",
	Short: "Operator tool for the videohost service",
	Long: `videohostctl runs maintenance tasks against the videohost database and
media store, using the same configuration as the server.

Commands:
  migrate  - Create or update the schema
  seed     - Insert the starter accounts and tags
  user     - Delete accounts with everything they own
  video    - Delete videos with their files
  tag      - List tags`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "f", "", "Path to a .env file (default: ./.env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// env is what every command works with
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log logrus.FieldLogger
}

func (e *env) close() {
	_ = database.Close(e.db)
}

// open loads the configuration and connects to the database
func open() (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadFile(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Format: "text", Output: os.Stderr})

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, log: log}, nil
}

func (e *env) store(ctx context.Context) (media.Store, error) {
	return media.NewStore(ctx, e.cfg)
}

// printJSON writes v to stdout when --json is set and reports whether it did
func printJSON(v any) (bool, error) {
	if !jsonOutput {
		return false, nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}
