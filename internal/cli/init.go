package cli

import (
	"fmt"
	"os"

	"github.com/spetersoncode/ago/internal/config"
	"github.com/spetersoncode/ago/internal/db"
	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reset an existing database")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ago for first-time use",
	Long: `Initialize ago by creating the marks database.

This command:
- Creates the database directory if it doesn't exist
- Creates ago.db and runs migrations
- Writes a sample ~/.ago/config.toml if none exists

Use --force to reset an existing database, removing all marks.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initResult struct {
	Database string `json:"database"`
	Created  bool   `json:"created"`
	Schema   int64  `json:"schema_version,omitempty"`
	Config   string `json:"config,omitempty"`
}

// configPath is where init writes the sample config; replaced in tests.
var configPath = config.DefaultConfigPath

func runInit(cmd *cobra.Command, args []string) error {
	path := db.ResolvePath(GetDBPath())

	existed := db.Exists(path)
	if existed && !initForce {
		if IsJSON() {
			return outputJSON(initResult{Database: path, Created: false})
		}
		return fmt.Errorf("database already exists at %s (use --force to reset it)", path)
	}

	VerboseOutput("Opening database...\n")
	database, err := db.Open(path)
	if err != nil {
		return ErrDatabase(err, "failed to create database")
	}
	defer database.Close()

	if existed {
		VerboseOutput("Resetting existing database...\n")
		if err := db.MigrateReset(database.DB); err != nil {
			return ErrDatabase(err, "failed to reset existing database")
		}
	}

	VerboseOutput("Running migrations...\n")
	if err := database.Migrate(); err != nil {
		return ErrDatabase(err, "failed to run migrations")
	}

	version, err := database.MigrationStatus()
	if err != nil {
		return ErrDatabase(err, "failed to get migration status")
	}

	result := initResult{Database: database.Path(), Created: true, Schema: version}

	if cfgPath := configPath(); cfgPath != "" && !fileExists(cfgPath) {
		if err := config.WriteConfigFile(cfgPath); err != nil {
			ErrorOutput("Warning: failed to write sample config: %v\n", err)
		} else {
			result.Config = cfgPath
		}
	}

	if IsJSON() {
		return outputJSON(result)
	}

	OutputLine("Initialized ago database at %s", result.Database)
	OutputLine("Schema version: %d", result.Schema)
	if result.Config != "" {
		OutputLine("Wrote sample config to %s", result.Config)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
