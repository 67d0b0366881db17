package dbexport

import (
	"context"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"tabledump/config"
	"tabledump/value"
)

var postgresTypes = TypeMap{
	"character varying": value.KindString,
	"varchar":           value.KindString,
	"character":         value.KindString,
	"char":              value.KindString,
	"bpchar":            value.KindString,
	"text":              value.KindString,
	"citext":            value.KindString,
	"name":              value.KindString,
	"json":              value.KindString,
	"jsonb":             value.KindString,

	"smallint": value.KindInt32,
	"integer":  value.KindInt32,
	"bigint":   value.KindInt64,

	"real":             value.KindFloat32,
	"double precision": value.KindFloat64,
	"numeric":          value.KindDecimal,
	"decimal":          value.KindDecimal,

	"boolean": value.KindBool,
	"uuid":    value.KindUUID,

	"timestamp with time zone":    value.KindDateTimeOffset,
	"timestamptz":                 value.KindDateTimeOffset,
	"timestamp without time zone": value.KindDateTime,
	"timestamp":                   value.KindDateTime,
	"date":                        value.KindDate,
	"time without time zone":      value.KindTime,
	"time":                        value.KindTime,
}

func init() {
	registerDialect(config.Postgres, &Dialect{
		Name:        "postgres",
		DriverName:  "pgx",
		DefaultPort: 5432,
		Types:       postgresTypes,
		Literals:    value.ANSI,
		DSN:         postgresDSN,
		Introspect:  introspectPostgres,
		TablesQuery: `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`,
	})
}

func postgresDSN(d config.Database, defaultPort int) (string, error) {
	q := url.Values{}
	for k, v := range d.Params {
		q.Set(k, v)
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Address(defaultPort),
		Path:     "/" + d.Database,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func introspectPostgres(ctx context.Context, db *sqlx.DB, table string) ([]Column, error) {
	query := `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? AND table_schema = current_schema() ORDER BY ordinal_position`
	args := []any{table}
	if schema, name, ok := strings.Cut(table, "."); ok {
		query = `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? AND table_schema = ? ORDER BY ordinal_position`
		args = []any{name, schema}
	}
	return scanColumns(ctx, db, db.Rebind(query), args...)
}
