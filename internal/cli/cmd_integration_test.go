package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spetersoncode/ago/internal/db"
	"github.com/spetersoncode/ago/internal/reltime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	twoHoursBefore   = "1718445600000"
	threeHoursBefore = "1718442000000"
	fiveMinsBefore   = "1718452500000"
)

// =============================================================================
// format
// =============================================================================

func TestCmdFormat(t *testing.T) {
	testDBPath := setupCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"hours", []string{"format", "--now", testNow, twoHoursBefore}, "2 hours ago\n"},
		{"abbreviated", []string{"format", "-a", "--now", testNow, twoHoursBefore}, "2 hrs ago\n"},
		{"just now", []string{"format", "--now", testNow, testNow}, "Just now\n"},
		{"future", []string{"format", "--now", testNow, "1718452900000"}, "Just now\n"},
		{"several", []string{"format", "--now", testNow, twoHoursBefore, fiveMinsBefore}, "2 hours ago\n5 minutes ago\n"},
		{"verbose", []string{"format", "-v", "--now", testNow, twoHoursBefore}, twoHoursBefore + "\t2 hours ago\n"},
		{"quiet", []string{"format", "-q", "--now", testNow, twoHoursBefore}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustRun(t, testDBPath, tt.args...))
		})
	}
}

func TestCmdFormat_ConfigAbbreviate(t *testing.T) {
	testDBPath := setupCLI(t)
	globalConfig.Abbreviate = true

	assert.Equal(t, "3 hrs ago\n", mustRun(t, testDBPath, "format", "--now", testNow, threeHoursBefore))
}

func TestCmdFormat_JSON(t *testing.T) {
	testDBPath := setupCLI(t)

	out := mustRun(t, testDBPath, "--json", "format", "--now", testNow, twoHoursBefore, testNow)

	var results []formatResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, int64(1718445600000), results[0].TimestampMs)
	assert.Equal(t, int64(7200000), results[0].ElapsedMs)
	assert.Equal(t, "2 hours ago", results[0].Text)
	assert.Equal(t, "Just now", results[1].Text)
}

func TestCmdFormat_Stdin(t *testing.T) {
	testDBPath := setupCLI(t)
	resetGlobalFlags()

	rootCmd.SetArgs([]string{"--db", testDBPath, "format", "--now", testNow})
	rootCmd.SetIn(strings.NewReader(twoHoursBefore + "\n\n  " + fiveMinsBefore + "  \n"))

	var execErr error
	stdout, _ := captureOutput(func() {
		execErr = rootCmd.Execute()
	})
	require.NoError(t, execErr)
	assert.Equal(t, "2 hours ago\n5 minutes ago\n", stdout)
}

func TestCmdFormat_InvalidInput(t *testing.T) {
	testDBPath := setupCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"not a number", []string{"format", "--now", testNow, "yesterday"}},
		{"bad now", []string{"format", "--now", "noon", twoHoursBefore}},
		{"float", []string{"format", "--now", testNow, "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, testDBPath, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitInvalidArgs, ExitCode(err))
			assert.Contains(t, FormatErrorMessage(err), "Suggestion:")
		})
	}
}

// =============================================================================
// init / version
// =============================================================================

func TestCmdInit(t *testing.T) {
	testDBPath := setupCLI(t)

	out := mustRun(t, testDBPath, "init")
	assert.Contains(t, out, "Initialized ago database at "+testDBPath)
	assert.Contains(t, out, "Schema version: 1")
	assert.FileExists(t, testDBPath)
	assert.FileExists(t, configPath())

	_, err := runCmd(t, testDBPath, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	mustRun(t, testDBPath, "mark", "add", "deploy")

	out = mustRun(t, testDBPath, "init", "--force")
	assert.Contains(t, out, "Initialized ago database")
	assert.Contains(t, out, "Schema version: 1")
	assert.NotContains(t, out, "sample config", "config is only written once")

	assert.Equal(t, "No marks found.\n", mustRun(t, testDBPath, "mark", "list"), "force resets the schema")
	mustRun(t, testDBPath, "mark", "add", "deploy")
}

func TestCmdInit_JSON(t *testing.T) {
	testDBPath := setupCLI(t)

	var result initResult
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, testDBPath, "--json", "init")), &result))
	assert.True(t, result.Created)
	assert.Equal(t, int64(1), result.Schema)
	assert.Equal(t, testDBPath, result.Database)

	require.NoError(t, json.Unmarshal([]byte(mustRun(t, testDBPath, "--json", "init")), &result))
	assert.False(t, result.Created)
}

func TestCmdVersion(t *testing.T) {
	testDBPath := setupCLI(t)

	out := mustRun(t, testDBPath, "version")
	assert.Contains(t, out, "ago dev")
	assert.Contains(t, out, "not initialized")

	mustRun(t, testDBPath, "init")

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, testDBPath, "--json", "version")), &info))
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, testDBPath, info.Database)
	assert.Equal(t, int64(1), info.Schema)
}

// =============================================================================
// mark
// =============================================================================

func TestCmdMark_RequiresInit(t *testing.T) {
	testDBPath := setupCLI(t)

	_, err := runCmd(t, testDBPath, "mark", "list")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Contains(t, FormatErrorMessage(err), SuggestRunInit)
}

func TestCmdMark_Lifecycle(t *testing.T) {
	testDBPath := setupCLI(t)
	mustRun(t, testDBPath, "init")

	out := mustRun(t, testDBPath, "mark", "add", "deploy", "--now", testNow, "--at", threeHoursBefore, "--note", "v1.4.0")
	assert.Equal(t, "Added mark deploy (3 hours ago)\n", out)

	out = mustRun(t, testDBPath, "mark", "add", "posted", "--now", testNow)
	assert.Equal(t, "Added mark posted (Just now)\n", out)

	out = mustRun(t, testDBPath, "mark", "list", "--now", testNow)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "posted")
	assert.Contains(t, lines[1], "Just now")
	assert.Contains(t, lines[2], "deploy")
	assert.Contains(t, lines[2], "3 hours ago")
	assert.Contains(t, lines[2], "v1.4.0")

	out = mustRun(t, testDBPath, "mark", "list", "-a", "-n", "1", "--now", "1718463600000")
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "3 hrs ago")
	assert.Equal(t, "(showing 1 of 2 marks)", lines[2])

	out = mustRun(t, testDBPath, "mark", "list", "-n", "2")
	assert.NotContains(t, out, "showing", "no footer when every mark is listed")

	out = mustRun(t, testDBPath, "mark", "show", "deploy", "--now", testNow)
	assert.Contains(t, out, "deploy")
	assert.Contains(t, out, "Timestamp: "+threeHoursBefore)
	assert.Contains(t, out, "Age:       3 hours ago")
	assert.Contains(t, out, "Note:      v1.4.0")

	out = mustRun(t, testDBPath, "mark", "touch", "deploy", "--now", testNow, "--at", fiveMinsBefore)
	assert.Equal(t, "Moved mark deploy (5 minutes ago)\n", out)

	out = mustRun(t, testDBPath, "mark", "rm", "deploy")
	assert.Equal(t, "Removed mark deploy\n", out)

	_, err := runCmd(t, testDBPath, "mark", "show", "deploy")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Contains(t, FormatErrorMessage(err), db.SuggestListMarks)
}

func TestCmdMark_Errors(t *testing.T) {
	testDBPath := setupCLI(t)
	mustRun(t, testDBPath, "init")
	mustRun(t, testDBPath, "mark", "add", "deploy")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"duplicate", []string{"mark", "add", "deploy"}, ExitConflict},
		{"invalid name", []string{"mark", "add", "Not Valid"}, ExitInvalidArgs},
		{"bad at", []string{"mark", "add", "other", "--at", "soon"}, ExitInvalidArgs},
		{"touch missing", []string{"mark", "touch", "missing"}, ExitNotFound},
		{"rm missing", []string{"mark", "rm", "missing"}, ExitNotFound},
		{"negative limit", []string{"mark", "list", "--limit", "-1"}, ExitInvalidArgs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, testDBPath, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ExitCode(err))
		})
	}
}

func TestCmdMark_JSON(t *testing.T) {
	testDBPath := setupCLI(t)
	mustRun(t, testDBPath, "init")

	var added map[string]interface{}
	out := mustRun(t, testDBPath, "--json", "mark", "add", "deploy", "--now", testNow, "--at", twoHoursBefore)
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "deploy", added["name"])
	assert.Equal(t, "2 hours ago", added["age"])
	assert.EqualValues(t, 1718445600000, added["timestamp_ms"])

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, testDBPath, "--json", "mark", "list", "--now", testNow)), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "2 hours ago", list[0]["age"])

	var removed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, testDBPath, "--json", "mark", "rm", "deploy")), &removed))
	assert.Equal(t, true, removed["removed"])

	require.NoError(t, json.Unmarshal([]byte(mustRun(t, testDBPath, "--json", "mark", "list")), &list))
	assert.Empty(t, list)
}

func TestCmdMark_ListEmpty(t *testing.T) {
	testDBPath := setupCLI(t)
	mustRun(t, testDBPath, "init")

	assert.Equal(t, "No marks found.\n", mustRun(t, testDBPath, "mark", "list"))
}

// =============================================================================
// automatic backup
// =============================================================================

func TestAutoBackup(t *testing.T) {
	testDBPath := setupCLI(t)
	mustRun(t, testDBPath, "init")

	backupPath := filepath.Join(filepath.Dir(testDBPath), "test.db.bak.1")
	_, err := os.Stat(backupPath)
	require.True(t, os.IsNotExist(err), "init does not back up")

	out := mustRun(t, testDBPath, "-v", "mark", "list")
	assert.Contains(t, out, "Created backup: "+backupPath)
	assert.FileExists(t, backupPath)

	out = mustRun(t, testDBPath, "-v", "mark", "list")
	assert.NotContains(t, out, "Created backup", "backup is not stale yet")
}

func TestAutoBackup_Disabled(t *testing.T) {
	testDBPath := setupCLI(t)
	globalConfig.Backup.Enabled = false
	mustRun(t, testDBPath, "init")
	mustRun(t, testDBPath, "mark", "list")

	_, err := os.Stat(filepath.Join(filepath.Dir(testDBPath), "test.db.bak.1"))
	assert.True(t, os.IsNotExist(err))
}

func TestFormatAll_ElapsedMatchesText(t *testing.T) {
	// Every clock read moves one minute forward, across a bucket boundary.
	next := int64(1718452800000 + 59999)
	f := reltime.New(reltime.ClockFunc(func() int64 {
		now := next
		next += 60000
		return now
	}))

	results, err := formatAll(f, []string{testNow, testNow}, false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, int64(59999), results[0].ElapsedMs)
	assert.Equal(t, "59 seconds ago", results[0].Text)
	assert.Equal(t, int64(119999), results[1].ElapsedMs)
	assert.Equal(t, "1 minute ago", results[1].Text)
}
