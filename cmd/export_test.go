package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"tabledump/config"
	"tabledump/dbexport"
)

func TestExport_JSON(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), usersTables)
	dir := t.TempDir()
	out, _, err := runRoot(t, "--config", cfg, "--output", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "users.json")); got != `[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]` {
		t.Errorf("unexpected JSON %s", got)
	}
	if !containsAll(out, []string{"Table 'users' data written to", "users.json", "(2 rows)"}) {
		t.Errorf("unexpected summary: %s", out)
	}
}

func TestExport_SQL(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), usersTables)
	dir := t.TempDir()
	if _, _, err := runRoot(t, "--config", cfg, "--output", dir, "--type", "sql"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "users.sql")); got != `INSERT INTO users (id,name) VALUES (1,'Alice'),(2,'Bob');` {
		t.Errorf("unexpected SQL %s", got)
	}

	if _, _, err := runRoot(t, "--config", cfg, "--output", dir, "-t", "sql", "--rows-per-statement", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "INSERT INTO users (id,name) VALUES (1,'Alice');\nINSERT INTO users (id,name) VALUES (2,'Bob');"
	if got := readFile(t, filepath.Join(dir, "users.sql")); got != want {
		t.Errorf("unexpected split SQL %s", got)
	}
}

func TestExport_CreatesOutputDir(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), usersTables)
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, _, err := runRoot(t, "--config", cfg, "--output", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err != nil {
		t.Errorf("expected output in new directory: %v", err)
	}
}

func TestExport_Gzip(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), usersTables)
	dir := t.TempDir()
	if _, _, err := runRoot(t, "--config", cfg, "--output", dir, "--compress", "gzip"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "users.json.gz"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]` {
		t.Errorf("unexpected decompressed JSON %s", data)
	}
}

func TestExport_MetricsFile(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), usersTables)
	dir := t.TempDir()
	metrics := filepath.Join(dir, "tabledump.prom")
	if _, _, err := runRoot(t, "--config", cfg, "--output", dir, "--metrics-file", metrics); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := readFile(t, metrics)
	if !containsAll(got, []string{
		`tabledump_rows_exported_total{format="json",table="users"} 2`,
		"tabledump_export_duration_seconds",
	}) {
		t.Errorf("unexpected metrics file:\n%s", got)
	}
}

func TestExport_MissingTableHint(t *testing.T) {
	tables := `[{"name": "users", "columns": ["id"]}, {"name": "ghosts", "columns": ["id"]}]`
	cfg := writeConfig(t, newFixtureDB(t), tables)
	dir := t.TempDir()
	out, _, err := runRoot(t, "--config", cfg, "--output", dir)
	if !errors.Is(err, dbexport.ErrSchemaIntrospection) {
		t.Fatalf("expected ErrSchemaIntrospection, got: %v", err)
	}
	if !strings.Contains(err.Error(), "check that the table or view exists") {
		t.Errorf("expected hint in error, got: %v", err)
	}
	if !strings.Contains(out, "Table 'users' data written to") {
		t.Errorf("tables before the failure should be reported, got: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "ghosts.json")); !os.IsNotExist(err) {
		t.Errorf("no output should exist for the failed table: %v", err)
	}
}

func TestExport_UnknownColumn(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), `[{"name": "users", "columns": ["id", "email"]}]`)
	_, _, err := runRoot(t, "--config", cfg, "--output", t.TempDir())
	if !errors.Is(err, dbexport.ErrMissingColumnSchema) {
		t.Errorf("expected ErrMissingColumnSchema, got: %v", err)
	}
}

func TestExport_ConfigErrors(t *testing.T) {
	_, _, err := runRoot(t, "--config", filepath.Join(t.TempDir(), "missing.json"), "--output", t.TempDir())
	if !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig for missing file, got: %v", err)
	}

	cfg := writeConfig(t, newFixtureDB(t), `[{"name": "users", "columns": []}]`)
	_, _, err = runRoot(t, "--config", cfg, "--output", t.TempDir())
	if !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig for empty columns, got: %v", err)
	}
}

func TestExport_NoTables(t *testing.T) {
	cfg := writeConfig(t, newFixtureDB(t), `[]`)
	dir := t.TempDir()
	out, _, err := runRoot(t, "--config", cfg, "--output", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("expected no summary, got: %s", out)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty output directory, got %d entries", len(entries))
	}
}
