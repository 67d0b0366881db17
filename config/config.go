// Package config loads the export configuration: connection parameters and the list of
// tables to export.
//
// The file is JSON by default and YAML when its extension is .yaml or .yml:
//
//	{
//	  "database": {"type": "mssql", "server": "localhost", "database": "shop",
//	               "user": "sa", "password": "secret"},
//	  "tables": [{"name": "users", "columns": ["id", "name"], "where": "active=1"}]
//	}
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks every configuration load or validation failure.
var ErrConfig = errors.New("config error")

// DatabaseType is one of the supported SQL dialects.
type DatabaseType string

const (
	MySQL    DatabaseType = "mysql"
	MSSQL    DatabaseType = "mssql"
	Postgres DatabaseType = "postgres"
	SQLite   DatabaseType = "sqlite"
	DuckDB   DatabaseType = "duckdb"
)

// Types lists the supported dialects in display order.
var Types = []DatabaseType{MySQL, MSSQL, Postgres, SQLite, DuckDB}

// IsFile reports whether the dialect reads a local database file instead of a server.
func (t DatabaseType) IsFile() bool {
	return t == SQLite || t == DuckDB
}

func (t DatabaseType) valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type Config struct {
	Database Database `json:"database" yaml:"database" jsonschema:"required"`
	Tables   []Table  `json:"tables" yaml:"tables" jsonschema:"required"`
}

// Database describes the connection. For file dialects Database is the file path and
// Server, User and Password are ignored.
type Database struct {
	Type     DatabaseType      `json:"type" yaml:"type" jsonschema:"description=SQL dialect"`
	Server   string            `json:"server" yaml:"server" jsonschema:"example=localhost"`
	Port     int               `json:"port,omitempty" yaml:"port,omitempty" jsonschema:"minimum=0,maximum=65535"`
	Database string            `json:"database" yaml:"database" jsonschema:"required,description=Database name or file path"`
	User     string            `json:"user" yaml:"user"`
	Password string            `json:"password" yaml:"password"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty" jsonschema:"description=Extra driver parameters"`

	// DatabaseType is accepted as another spelling of type.
	DatabaseType DatabaseType `json:"database_type,omitempty" yaml:"database_type,omitempty" jsonschema:"description=Alias of type"`
}

// Table selects the columns to export, in output order, and an optional filter.
type Table struct {
	Name    string   `json:"name" yaml:"name" jsonschema:"required,example=some_table"`
	Columns []string `json:"columns" yaml:"columns" jsonschema:"required,minItems=1"`
	Where   string   `json:"where,omitempty" yaml:"where,omitempty" jsonschema:"example=where 1=1"`

	// WhereClause is accepted as another spelling of where.
	WhereClause string `json:"where_clause,omitempty" yaml:"where_clause,omitempty" jsonschema:"description=Alias of where"`
}

// Filter returns the WHERE predicate, "1=1" when none is configured. A leading WHERE
// keyword is dropped. The text is otherwise passed through verbatim.
func (t Table) Filter() string {
	where := strings.TrimSpace(t.Where)
	if len(where) >= 6 && strings.EqualFold(where[:5], "where") && isSpace(where[5]) {
		where = strings.TrimSpace(where[6:])
	}
	if where == "" {
		return "1=1"
	}
	return where
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Address returns host:port. A port embedded in Server wins over Port, which wins over
// defaultPort.
func (d Database) Address(defaultPort int) string {
	if strings.Contains(d.Server, ":") || strings.Contains(d.Server, `\`) {
		return d.Server
	}
	port := d.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", d.Server, port)
}

// Load reads the configuration file at path, applies environment and flag overrides
// (flags win) and validates the result.
func Load(path string, ov Overrides) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrConfig, err)
	}
	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		cfg, err = ParseJSON(data)
	}
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(&cfg.Database); err != nil {
		return nil, err
	}
	ov.Apply(&cfg.Database)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseJSON decodes a JSON configuration. Unknown fields are rejected.
func ParseJSON(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfig, err)
	}
	if err := cfg.resolveAliases(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseYAML decodes a YAML configuration. Unknown fields are rejected.
func ParseYAML(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfig, err)
	}
	if err := cfg.resolveAliases(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveAliases folds database_type into type and where_clause into where. Both
// spellings may be given only when they agree.
func (c *Config) resolveAliases() error {
	d := &c.Database
	if d.DatabaseType != "" {
		if d.Type != "" && d.Type != d.DatabaseType {
			return fmt.Errorf("%w: type %q conflicts with database_type %q", ErrConfig, d.Type, d.DatabaseType)
		}
		d.Type, d.DatabaseType = d.DatabaseType, ""
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.WhereClause == "" {
			continue
		}
		if t.Where != "" && t.Where != t.WhereClause {
			return fmt.Errorf("%w: table %q: where conflicts with where_clause", ErrConfig, t.Name)
		}
		t.Where, t.WhereClause = t.WhereClause, ""
	}
	return nil
}

// Validate checks required fields and column lists.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Tables))
	for i, t := range c.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: tables[%d]: name is required", ErrConfig, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: table %q is listed twice", ErrConfig, t.Name)
		}
		seen[t.Name] = true
		if len(t.Columns) == 0 {
			return fmt.Errorf("%w: table %q: columns must not be empty", ErrConfig, t.Name)
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, col := range t.Columns {
			if strings.TrimSpace(col) == "" {
				return fmt.Errorf("%w: table %q: empty column name", ErrConfig, t.Name)
			}
			if cols[col] {
				return fmt.Errorf("%w: table %q: column %q is listed twice", ErrConfig, t.Name, col)
			}
			cols[col] = true
		}
	}
	return nil
}

// Validate checks the connection parameters required by the selected dialect.
func (d Database) Validate() error {
	if !d.Type.valid() {
		names := make([]string, len(Types))
		for i, t := range Types {
			names[i] = string(t)
		}
		return fmt.Errorf("%w: unsupported database type %q (expected one of: %s)", ErrConfig, d.Type, strings.Join(names, ", "))
	}
	var missing []string
	if d.Database == "" {
		missing = append(missing, "database")
	}
	if !d.Type.IsFile() {
		if d.Server == "" {
			missing = append(missing, "server")
		}
		if d.User == "" {
			missing = append(missing, "user")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required connection parameters: %s", ErrConfig, strings.Join(missing, ", "))
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrConfig, d.Port)
	}
	return nil
}
