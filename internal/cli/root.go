package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spetersoncode/ago/internal/backup"
	"github.com/spetersoncode/ago/internal/config"
	"github.com/spetersoncode/ago/internal/db"
	"github.com/spetersoncode/ago/internal/reltime"
	"github.com/spf13/cobra"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	dbPath     string
	jsonOut    bool
	quiet      bool
	verbose    bool
	noColor    bool
	abbreviate bool
	nowFlag    string
)

// Global configuration (loaded once at startup)
var globalConfig *config.Config

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitNotFound     = 3
	ExitDBError      = 5
	ExitConflict     = 6
)

// skipBackupCommands lists commands that never trigger an automatic backup.
var skipBackupCommands = map[string]bool{
	"help":    true,
	"version": true,
	"init":    true,
	"format":  true,
}

var rootCmd = &cobra.Command{
	Use:   "ago",
	Short: "Show how long ago things happened",
	Long: `ago turns millisecond timestamps into short relative strings such as
"5 minutes ago", "3 hrs ago" or "Just now".

It can format timestamps directly, keep named marks in a local database
and serve both over a small HTTP API.

Use "ago format <timestamp-ms>" to format a timestamp.
Use "ago init" to create the marks database.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return runAutoBackup(cmd)
	},
}

func init() {
	var err error
	globalConfig, err = config.Load()
	if err != nil {
		// An invalid config file is not fatal
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
		globalConfig = config.DefaultConfig()
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (default ~/.ago/ago.db)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&abbreviate, "abbrev", "a", false, "Use short unit words (min, hr, wk, mth, yr)")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Reference instant in milliseconds since epoch (default: current time)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("ago %s (%s, %s)\n", Version, shortCommit(), shortDate()))

	rootCmd.AddCommand(versionCmd)
}

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// runAutoBackup backs up the marks database before a command runs, when due.
// Failures are reported in verbose mode and never stop the command.
func runAutoBackup(cmd *cobra.Command) error {
	if skipBackupCommands[cmd.Name()] || globalConfig == nil || !globalConfig.Backup.Enabled {
		return nil
	}

	path := db.ResolvePath(GetDBPath())
	if !db.Exists(path) {
		return nil
	}

	mgr := backup.NewManager(path, globalConfig.Backup)
	last, err := mgr.LastBackupTime()
	if err != nil {
		VerboseOutput("Warning: automatic backup failed: %v\n", err)
		return nil
	}

	backupPath, err := mgr.BackupIfNeeded()
	if err != nil {
		VerboseOutput("Warning: automatic backup failed: %v\n", err)
		return nil
	}

	if backupPath != "" {
		if last.IsZero() {
			VerboseOutput("Created backup: %s\n", backupPath)
		} else {
			VerboseOutput("Created backup: %s (previous one was %s)\n", backupPath, reltime.FormatTime(last, false))
		}
	}

	return nil
}

// GetDBPath returns the database path from flags, config, or "" for the default.
// Priority: flag > env > config file > default
func GetDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if globalConfig != nil {
		return globalConfig.GetDB()
	}
	return ""
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsNoColor returns whether colored output should be disabled.
// Priority: flag > env > config file > default
func IsNoColor() bool {
	if noColor {
		return true
	}
	if globalConfig != nil {
		return globalConfig.NoColor
	}
	return false
}

// IsAbbreviate returns whether short unit words are requested by flag or config.
func IsAbbreviate() bool {
	if abbreviate {
		return true
	}
	if globalConfig != nil {
		return globalConfig.Abbreviate
	}
	return false
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// parseMillis parses a decimal millisecond timestamp argument.
func parseMillis(what, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidArgsWithSuggestion(SuggestMillis, "%s %q is not an integer millisecond timestamp", what, s)
	}
	return v, nil
}

// clock returns the reference clock: a fixed instant when --now is given,
// otherwise the system clock.
func clock() (reltime.Clock, error) {
	if nowFlag == "" {
		return reltime.SystemClock{}, nil
	}
	now, err := parseMillis("--now", nowFlag)
	if err != nil {
		return nil, err
	}
	return reltime.FixedClock(now), nil
}

// formatter returns a formatter reading the reference clock.
func formatter() (*reltime.Formatter, error) {
	c, err := clock()
	if err != nil {
		return nil, err
	}
	return reltime.New(c), nil
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// Output prints to stdout unless quiet mode is enabled
func Output(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format, args...)
	}
}

// OutputLine prints a line to stdout unless quiet mode is enabled
func OutputLine(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// VerboseOutput prints to stdout only in verbose mode
func VerboseOutput(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Printf(format, args...)
	}
}

// ErrorOutput prints to stderr
func ErrorOutput(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
