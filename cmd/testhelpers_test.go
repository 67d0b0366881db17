package cmd

import (
	"bytes"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tabledump/dbexport"
)

// containsAll returns true if all substrings in subs are present in s.
func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

const fixtureSQL = `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, active BOOLEAN);
INSERT INTO users VALUES (1, 'Alice', 1);
INSERT INTO users VALUES (2, 'Bob', 1);
INSERT INTO users VALUES (3, 'Carol', 0);
`

// newFixtureDB creates a sqlite database holding the users table and returns its path.
func newFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open sqlite3: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(fixtureSQL); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	return path
}

// writeConfig writes a JSON config for a sqlite database with the given tables
// section and returns its path.
func writeConfig(t *testing.T, dbPath, tables string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"database": {"type": "sqlite", "database": "` + filepath.ToSlash(dbPath) + `"}, "tables": ` + tables + `}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const usersTables = `[{"name": "users", "columns": ["id", "name"], "where": "active = 1 ORDER BY id"}]`

// resetCommandState restores flag values, including cobra's help flags, between runs.
// pflag keeps the positional args of the last parse when the next parse has none, so
// those are cleared too.
func resetCommandState() {
	flagConfig = "config.json"
	flagServer, flagPort, flagUser, flagPassword, flagDatabase = "", 0, "", "", ""
	flagLogLevel = "info"
	flagTimeout = 0
	exportOutput = "/tmp"
	exportType = dbexport.FormatJSON
	exportCompress = dbexport.CompressNone
	exportRowsPerStatement = 0
	exportMetricsFile = ""
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		if f := c.Flags().Lookup("help"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
		_ = c.Flags().Parse([]string{"--"})
	}
	rootCmd.SetArgs([]string{})
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	logger = newLogger(io.Discard, zerolog.InfoLevel)
}

// runRoot executes the root command with args and returns stdout and stderr.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetCommandState()
	t.Cleanup(resetCommandState)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
