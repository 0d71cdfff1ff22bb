package cli

import (
	"fmt"

	"github.com/spetersoncode/ago/internal/db"
	"github.com/spetersoncode/ago/internal/models"
	"github.com/spetersoncode/ago/internal/reltime"
	"github.com/spf13/cobra"
)

// Mark command flags
var (
	markAt    string
	markNote  string
	markLimit int
)

func init() {
	markAddCmd.Flags().StringVar(&markAt, "at", "", "Timestamp in milliseconds since epoch (default: now)")
	markAddCmd.Flags().StringVar(&markNote, "note", "", "Free-form note")
	markTouchCmd.Flags().StringVar(&markAt, "at", "", "Timestamp in milliseconds since epoch (default: now)")
	markListCmd.Flags().IntVarP(&markLimit, "limit", "n", 50, "Maximum number of marks to show (0 for all)")

	markCmd.AddCommand(markAddCmd, markTouchCmd, markListCmd, markShowCmd, markRmCmd)
	rootCmd.AddCommand(markCmd)
}

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Manage named timestamps",
	Long: `Marks are named timestamps ("deploy", "posted", "last-backup") stored in
the local database and displayed with their relative age.

Examples:
  ago mark add deploy --note "v1.4.0"
  ago mark list
  ago mark touch deploy
  ago mark rm deploy`,
}

var markAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a mark",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkAdd,
}

var markTouchCmd = &cobra.Command{
	Use:   "touch <name>",
	Short: "Move a mark to now (or --at)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkTouch,
}

var markListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List marks, newest first",
	Args:    cobra.NoArgs,
	RunE:    runMarkList,
}

var markShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a mark",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkShow,
}

var markRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a mark",
	Args:    cobra.ExactArgs(1),
	RunE:    runMarkRm,
}

// markView is a mark as printed by the CLI.
type markView struct {
	*models.Mark
	Age string `json:"age"`
}

// openDB opens the marks database, which must already exist, and brings its
// schema up to date.
func openDB() (*db.DB, error) {
	path := GetDBPath()
	if !db.Exists(path) {
		return nil, ErrNotFoundWithSuggestion(SuggestRunInit, "database not found at %s", db.ResolvePath(path))
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, ErrDatabase(err, "failed to open database")
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, ErrDatabase(err, "failed to migrate database")
	}
	return database, nil
}

// resolveAt returns the --at timestamp, or the reference clock's now.
func resolveAt(c reltime.Clock) (int64, error) {
	if markAt == "" {
		return c.NowMillis(), nil
	}
	return parseMillis("--at", markAt)
}

func newMarkView(f *reltime.Formatter, m *models.Mark) markView {
	return markView{Mark: m, Age: f.FormatTime(m.Time(), IsAbbreviate())}
}

func runMarkAdd(cmd *cobra.Command, args []string) error {
	c, err := clock()
	if err != nil {
		return err
	}
	ts, err := resolveAt(c)
	if err != nil {
		return err
	}
	if err := models.ValidateMarkName(args[0]); err != nil {
		return ErrInvalidArgs("%v", err)
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	m := &models.Mark{Name: args[0], TimestampMs: ts, Note: markNote}
	if err := db.NewMarkRepo(database.DB).Create(m); err != nil {
		return err
	}

	view := newMarkView(reltime.New(c), m)
	if IsJSON() {
		return outputJSON(view)
	}
	OutputLine("Added mark %s (%s)", bold(m.Name), ageColor(view.Age))
	return nil
}

func runMarkTouch(cmd *cobra.Command, args []string) error {
	c, err := clock()
	if err != nil {
		return err
	}
	ts, err := resolveAt(c)
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := db.NewMarkRepo(database.DB).Touch(args[0], ts)
	if err != nil {
		return err
	}

	view := newMarkView(reltime.New(c), m)
	if IsJSON() {
		return outputJSON(view)
	}
	OutputLine("Moved mark %s (%s)", bold(m.Name), ageColor(view.Age))
	return nil
}

func runMarkList(cmd *cobra.Command, args []string) error {
	if markLimit < 0 {
		return ErrInvalidArgs("--limit must not be negative")
	}
	f, err := formatter()
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	repo := db.NewMarkRepo(database.DB)
	marks, err := repo.List(db.MarkFilter{Limit: markLimit})
	if err != nil {
		return err
	}

	views := make([]markView, 0, len(marks))
	for _, m := range marks {
		views = append(views, newMarkView(f, m))
	}

	if IsJSON() {
		return outputJSON(views)
	}

	if len(views) == 0 {
		OutputLine("No marks found.")
		return nil
	}

	OutputLine("%s", dim(padRight("NAME", 24)+" "+padRight("TIMESTAMP", 14)+" "+padRight("AGE", 16)+" NOTE"))
	for _, v := range views {
		OutputLine("%s %-14d %s %s", padRight(v.Name, 24), v.TimestampMs, ageColor(padRight(v.Age, 16)), v.Note)
	}

	if markLimit > 0 && len(views) == markLimit {
		total, err := repo.Count()
		if err != nil {
			return err
		}
		if total > len(views) {
			OutputLine("%s", dim(fmt.Sprintf("(showing %d of %d marks)", len(views), total)))
		}
	}
	return nil
}

func runMarkShow(cmd *cobra.Command, args []string) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := db.NewMarkRepo(database.DB).GetByName(args[0])
	if err != nil {
		return err
	}

	view := newMarkView(f, m)
	if IsJSON() {
		return outputJSON(view)
	}

	OutputLine("%s", bold(m.Name))
	OutputLine("Timestamp: %d", m.TimestampMs)
	OutputLine("Age:       %s", ageColor(view.Age))
	if m.Note != "" {
		OutputLine("Note:      %s", m.Note)
	}
	VerboseOutput("Created:   %s\n", reltime.FormatTime(m.CreatedAt, IsAbbreviate()))
	return nil
}

func runMarkRm(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.NewMarkRepo(database.DB).Delete(args[0]); err != nil {
		return err
	}

	if IsJSON() {
		return outputJSON(map[string]interface{}{"name": args[0], "removed": true})
	}
	OutputLine("Removed mark %s", args[0])
	return nil
}

// padRight pads s with spaces to width, leaving longer strings intact.
func padRight(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
