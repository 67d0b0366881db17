package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"tabledump/dbexport"
)

func TestSchema_Stdout(t *testing.T) {
	out, _, err := runRoot(t, "schema")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	if !containsAll(out, []string{`"database"`, `"tables"`, `"database_type"`, `"where_clause"`, `"mssql"`}) {
		t.Errorf("unexpected schema:\n%s", out)
	}
}

func TestSchema_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	out, _, err := runRoot(t, "schema", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("nothing should go to stdout, got %q", out)
	}
	if got := readFile(t, path); !strings.Contains(got, `"additionalProperties": false`) {
		t.Errorf("unexpected schema file:\n%s", got)
	}
}

func TestSchema_Errors(t *testing.T) {
	if _, _, err := runRoot(t, "schema", "a.json", "b.json"); err == nil {
		t.Error("expected error for two arguments")
	}
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "schema.json")
	if _, _, err := runRoot(t, "schema", missing); !errors.Is(err, dbexport.ErrIO) {
		t.Errorf("expected ErrIO, got: %v", err)
	}
}
