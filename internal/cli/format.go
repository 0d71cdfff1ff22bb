package cli

import (
	"bufio"
	"strings"

	"github.com/spetersoncode/ago/internal/reltime"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(formatCmd)
}

var formatCmd = &cobra.Command{
	Use:   "format [timestamp-ms...]",
	Short: "Format timestamps as relative time",
	Long: `Print a relative "time ago" string for each millisecond timestamp.

Timestamps are read from the arguments, or one per line from standard
input when no arguments are given.

Elapsed time is bucketed as seconds, minutes, hours, days, weeks, months
or years. Anything under two seconds, or in the future, prints "Just now".

Examples:
  ago format 1718452800000
  ago format --abbrev 1718452800000 1718449200000
  ago format --now 1718452800000 1718445600000   # "2 hours ago"
  date +%s000 | ago format`,
	RunE: runFormat,
}

type formatResult struct {
	TimestampMs int64  `json:"timestamp_ms"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	Text        string `json:"text"`
}

func runFormat(cmd *cobra.Command, args []string) error {
	inputs := args
	if len(inputs) == 0 {
		var err error
		inputs, err = readLines(cmd)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return ErrInvalidArgsWithSuggestion(SuggestMillis, "no timestamps given")
		}
	}

	f, err := formatter()
	if err != nil {
		return err
	}

	results, err := formatAll(f, inputs, IsAbbreviate())
	if err != nil {
		return err
	}

	if IsJSON() {
		return outputJSON(results)
	}

	for _, r := range results {
		if IsVerbose() {
			OutputLine("%d\t%s", r.TimestampMs, ageColor(r.Text))
			continue
		}
		OutputLine("%s", ageColor(r.Text))
	}
	return nil
}

// formatAll parses and formats each input. The clock is read once per input,
// so elapsed_ms always matches the text.
func formatAll(f *reltime.Formatter, inputs []string, abbrev bool) ([]formatResult, error) {
	results := make([]formatResult, 0, len(inputs))
	for _, in := range inputs {
		ts, err := parseMillis("timestamp", in)
		if err != nil {
			return nil, err
		}
		elapsed := f.Elapsed(ts)
		results = append(results, formatResult{
			TimestampMs: ts,
			ElapsedMs:   elapsed,
			Text:        reltime.Classify(elapsed).Text(abbrev),
		})
	}
	return results, nil
}

// readLines returns the non-blank lines of the command's standard input.
func readLines(cmd *cobra.Command) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ErrGeneralWithCause(err, "failed to read standard input")
	}
	return lines, nil
}
