package dbexport

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tabledump/config"
	"tabledump/value"
)

// Backend is the capability set the export pipeline needs from a database.
type Backend interface {
	Name() string
	LiteralStyle() value.LiteralStyle
	Resolve(native string) (value.Kind, error)
	// DecodeUUID converts a 16-byte driver value in the backend's byte order.
	DecodeUUID(b []byte) (uuid.UUID, error)
	Introspect(ctx context.Context, table string) (*SchemaMap, error)
	Query(ctx context.Context, query string) (Rows, error)
	ListTables(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Dialect describes everything that differs between database engines.
type Dialect struct {
	Name        string
	DriverName  string
	DefaultPort int
	Types       TypeMap
	Literals    value.LiteralStyle
	// DSN builds the driver connection string. defaultPort is used when d has none.
	DSN         func(d config.Database, defaultPort int) (string, error)
	Introspect  func(ctx context.Context, db *sqlx.DB, table string) ([]Column, error)
	TablesQuery string
	// UUIDFromBytes overrides the RFC 4122 byte order when set.
	UUIDFromBytes func(b []byte) (uuid.UUID, error)
}

var dialects = map[config.DatabaseType]*Dialect{}

func registerDialect(t config.DatabaseType, d *Dialect) {
	dialects[t] = d
}

// LookupDialect returns the registered dialect for a database type.
func LookupDialect(t config.DatabaseType) (*Dialect, error) {
	d, ok := dialects[t]
	if !ok {
		names := make([]string, 0, len(dialects))
		for k := range dialects {
			names = append(names, string(k))
		}
		sort.Strings(names)
		return nil, fmt.Errorf("no dialect registered for %q (have %v)", t, names)
	}
	return d, nil
}

var sqlxOpen = sqlx.Open

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.Database) (*SQLBackend, error) {
	d, err := LookupDialect(cfg.Type)
	if err != nil {
		return nil, newError(ErrConnection, "", "", err)
	}
	dsn, err := d.DSN(cfg, d.DefaultPort)
	if err != nil {
		return nil, newError(ErrConnection, "", "", fmt.Errorf("failed to build connection string: %w", err))
	}
	db, err := sqlxOpen(d.DriverName, dsn)
	if err != nil {
		return nil, newError(ErrConnection, "", "", fmt.Errorf("failed to open %s connection: %w", d.Name, err))
	}
	b := NewBackend(d, db)
	if err := b.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// SQLBackend implements Backend over a database/sql pool. The pool is shared by
// introspection and data queries.
type SQLBackend struct {
	dialect *Dialect
	db      *sqlx.DB
}

// NewBackend wraps an open pool.
func NewBackend(d *Dialect, db *sqlx.DB) *SQLBackend {
	return &SQLBackend{dialect: d, db: db}
}

func (b *SQLBackend) Name() string                     { return b.dialect.Name }
func (b *SQLBackend) LiteralStyle() value.LiteralStyle { return b.dialect.Literals }

func (b *SQLBackend) Resolve(native string) (value.Kind, error) {
	return b.dialect.Types.Resolve(native)
}

func (b *SQLBackend) DecodeUUID(raw []byte) (uuid.UUID, error) {
	if b.dialect.UUIDFromBytes != nil {
		return b.dialect.UUIDFromBytes(raw)
	}
	return uuid.FromBytes(raw)
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return newError(ErrConnection, "", "", fmt.Errorf("failed to ping %s: %w", b.dialect.Name, err))
	}
	return nil
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}

func (b *SQLBackend) Introspect(ctx context.Context, table string) (*SchemaMap, error) {
	cols, err := b.dialect.Introspect(ctx, b.db, table)
	if err != nil {
		return nil, newError(ErrSchemaIntrospection, table, "", err)
	}
	if len(cols) == 0 {
		return nil, newError(ErrSchemaIntrospection, table, "", fmt.Errorf("catalog returned no columns"))
	}
	return NewSchemaMap(table, cols), nil
}

func (b *SQLBackend) Query(ctx context.Context, query string) (Rows, error) {
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (b *SQLBackend) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	if err := b.db.SelectContext(ctx, &tables, b.dialect.TablesQuery); err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	return tables, nil
}

// scanColumns reads (name, type) pairs from a catalog query.
func scanColumns(ctx context.Context, db *sqlx.DB, query string, args ...any) ([]Column, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying catalog: %w", err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("error scanning catalog row: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return cols, nil
}
