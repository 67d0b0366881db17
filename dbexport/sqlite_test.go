package dbexport

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tabledump/config"
)

const sqliteFixture = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	name TEXT,
	active BOOLEAN,
	score REAL,
	joined DATE,
	alarm TIME,
	token UUID,
	note TEXT
);
INSERT INTO users VALUES (1, 'Alice', 1, 1.5, '2024-03-09', '07:30:00', '6ba7b810-9dad-11d1-80b4-00c04fd430c8', NULL);
INSERT INTO users VALUES (2, 'Bob', 1, 2, '2023-12-31', '23:59:59', NULL, 'it''s');
INSERT INTO users VALUES (3, 'Carol', 0, NULL, NULL, NULL, NULL, NULL);
`

// newSQLiteFixture writes the users fixture to a database file and opens it through
// the sqlite dialect.
func newSQLiteFixture(t *testing.T) *SQLBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open sqlite3: %v", err)
	}
	if _, err := db.Exec(sqliteFixture); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	db.Close()

	b, err := Open(context.Background(), config.Database{Type: config.SQLite, Database: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLiteUsersScenario(t *testing.T) {
	b := newSQLiteFixture(t)
	dir := t.TempDir()
	w := NewWriter(b, dir)
	ctx := context.Background()

	if _, err := w.ExportJSON(ctx, usersTable); err != nil {
		t.Fatal(err)
	}
	if _, err := w.ExportSQL(ctx, usersTable); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(dir, "users.json")); got != `[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]` {
		t.Errorf("unexpected JSON %s", got)
	}
	if got := readFile(t, filepath.Join(dir, "users.sql")); got != `INSERT INTO users (id,name) VALUES (1,'Alice'),(2,'Bob');` {
		t.Errorf("unexpected SQL %s", got)
	}
}

func TestSQLiteAllKinds(t *testing.T) {
	b := newSQLiteFixture(t)
	dir := t.TempDir()
	w := NewWriter(b, dir)
	table := config.Table{
		Name:    "users",
		Columns: []string{"note", "token", "alarm", "joined", "score", "active", "name", "id"},
		Where:   "id IN (1, 2) ORDER BY id",
	}
	if _, err := w.ExportJSON(context.Background(), table); err != nil {
		t.Fatal(err)
	}
	want := `[` +
		`{"note":null,"token":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","alarm":"07:30:00","joined":"2024-03-09","score":1.5,"active":true,"name":"Alice","id":1},` +
		`{"note":"it's","token":null,"alarm":"23:59:59","joined":"2023-12-31","score":2,"active":true,"name":"Bob","id":2}` +
		`]`
	if got := readFile(t, filepath.Join(dir, "users.json")); got != want {
		t.Errorf("JSON output:\n got %s\nwant %s", got, want)
	}
}

func TestSQLiteExportIsIdempotent(t *testing.T) {
	b := newSQLiteFixture(t)
	table := config.Table{Name: "users", Columns: []string{"id", "name", "active", "score", "note"}}
	for _, f := range []Format{FormatJSON, FormatSQL} {
		dir := t.TempDir()
		w := NewWriter(b, dir)
		first, err := w.Export(context.Background(), table, f)
		if err != nil {
			t.Fatal(err)
		}
		a, _ := os.ReadFile(first.Path)
		second, err := w.Export(context.Background(), table, f)
		if err != nil {
			t.Fatal(err)
		}
		c, _ := os.ReadFile(second.Path)
		if !bytes.Equal(a, c) || first.Checksum != second.Checksum {
			t.Errorf("%s: re-run produced different output:\n%s\n%s", f, a, c)
		}
	}
}

func TestSQLiteSQLEscaping(t *testing.T) {
	b := newSQLiteFixture(t)
	dir := t.TempDir()
	w := NewWriter(b, dir)
	table := config.Table{Name: "users", Columns: []string{"id", "active", "note"}, Where: "id > 1"}
	if _, err := w.ExportSQL(context.Background(), table); err != nil {
		t.Fatal(err)
	}
	want := `INSERT INTO users (id,active,note) VALUES (2,1,'it''s'),(3,0,NULL);`
	if got := readFile(t, filepath.Join(dir, "users.sql")); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSQLiteListing(t *testing.T) {
	b := newSQLiteFixture(t)
	var out bytes.Buffer
	if err := ListTables(context.Background(), b, &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Tables in the database:\nusers\n" {
		t.Errorf("unexpected tables output %q", out.String())
	}

	out.Reset()
	if err := ListFields(context.Background(), b, "users", &out); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"Fields in table 'users':",
		"id\tINTEGER\tint64",
		"active\tBOOLEAN\tbool",
		"token\tUUID\tuuid",
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("fields output missing %q:\n%s", line, out.String())
		}
	}

	if err := ListFields(context.Background(), b, "ghosts", &out); err == nil {
		t.Error("expected error for missing table")
	}
}
