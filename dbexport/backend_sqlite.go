package dbexport

import (
	"context"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"tabledump/config"
	"tabledump/value"
)

// SQLite column types are free text; these are the declarations the driver itself
// recognizes plus the common aliases.
var sqliteTypes = TypeMap{
	"integer":  value.KindInt64,
	"int":      value.KindInt64,
	"bigint":   value.KindInt64,
	"smallint": value.KindInt64,
	"tinyint":  value.KindInt64,

	"text":     value.KindString,
	"varchar":  value.KindString,
	"char":     value.KindString,
	"nvarchar": value.KindString,
	"clob":     value.KindString,

	"real":    value.KindFloat64,
	"double":  value.KindFloat64,
	"float":   value.KindFloat64,
	"numeric": value.KindDecimal,
	"decimal": value.KindDecimal,

	"boolean": value.KindBool,
	"bool":    value.KindBool,

	"date":      value.KindDate,
	"datetime":  value.KindDateTime,
	"timestamp": value.KindDateTime,
	"time":      value.KindTime,
	"uuid":      value.KindUUID,
}

func init() {
	registerDialect(config.SQLite, &Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite3",
		Types:       sqliteTypes,
		Literals:    value.LiteralStyle{True: "1", False: "0"},
		DSN:         fileDSN,
		Introspect:  introspectSQLite,
		TablesQuery: `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
	})
}

// fileDSN is the database path with params appended as a query string. File
// databases have no port.
func fileDSN(d config.Database, _ int) (string, error) {
	if len(d.Params) == 0 {
		return d.Database, nil
	}
	q := url.Values{}
	for k, v := range d.Params {
		q.Set(k, v)
	}
	return d.Database + "?" + q.Encode(), nil
}

func introspectSQLite(ctx context.Context, db *sqlx.DB, table string) ([]Column, error) {
	return scanColumns(ctx, db, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
}
