package dbexport

import (
	"context"
	"math/big"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/marcboeker/go-duckdb"

	"tabledump/config"
	"tabledump/value"
)

var duckdbTypes = TypeMap{
	"varchar": value.KindString,
	"text":    value.KindString,
	"json":    value.KindString,

	"tinyint":   value.KindInt32,
	"smallint":  value.KindInt32,
	"integer":   value.KindInt32,
	"utinyint":  value.KindInt32,
	"usmallint": value.KindInt32,
	"uinteger":  value.KindInt64,
	"bigint":    value.KindInt64,
	"ubigint":   value.KindDecimal,
	"hugeint":   value.KindDecimal,

	"float":   value.KindFloat32,
	"real":    value.KindFloat32,
	"double":  value.KindFloat64,
	"decimal": value.KindDecimal,
	"numeric": value.KindDecimal,

	"boolean": value.KindBool,
	"uuid":    value.KindUUID,

	"timestamp with time zone": value.KindDateTimeOffset,
	"timestamptz":              value.KindDateTimeOffset,
	"timestamp":                value.KindDateTime,
	"datetime":                 value.KindDateTime,
	"date":                     value.KindDate,
	"time":                     value.KindTime,
}

func init() {
	registerDialect(config.DuckDB, &Dialect{
		Name:        "duckdb",
		DriverName:  "duckdb",
		Types:       duckdbTypes,
		Literals:    value.ANSI,
		DSN:         fileDSN,
		Introspect:  introspectDuckDB,
		TablesQuery: `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`,
	})
}

func introspectDuckDB(ctx context.Context, db *sqlx.DB, table string) ([]Column, error) {
	query := `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? AND table_schema = current_schema() ORDER BY ordinal_position`
	args := []any{table}
	if schema, name, ok := strings.Cut(table, "."); ok {
		query = `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? AND table_schema = ? ORDER BY ordinal_position`
		args = []any{name, schema}
	}
	return scanColumns(ctx, db, query, args...)
}

// duckdbDecimalText renders a DECIMAL at its declared scale, so 12.50 keeps its
// trailing zero as it does on the other dialects.
func duckdbDecimalText(d duckdb.Decimal) string {
	if d.Value == nil {
		return "0"
	}
	digits := new(big.Int).Abs(d.Value).String()
	sign := ""
	if d.Value.Sign() < 0 {
		sign = "-"
	}
	scale := int(d.Scale)
	if scale == 0 {
		return sign + digits
	}
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	cut := len(digits) - scale
	return sign + digits[:cut] + "." + digits[cut:]
}
