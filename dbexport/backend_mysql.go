package dbexport

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"tabledump/config"
	"tabledump/value"
)

var mysqlTypes = TypeMap{
	"varchar":    value.KindString,
	"char":       value.KindString,
	"tinytext":   value.KindString,
	"text":       value.KindString,
	"mediumtext": value.KindString,
	"longtext":   value.KindString,
	"enum":       value.KindString,
	"set":        value.KindString,
	"json":       value.KindString,

	"tinyint":            value.KindInt32,
	"smallint":           value.KindInt32,
	"mediumint":          value.KindInt32,
	"int":                value.KindInt32,
	"integer":            value.KindInt32,
	"year":               value.KindInt32,
	"tinyint unsigned":   value.KindInt32,
	"smallint unsigned":  value.KindInt32,
	"mediumint unsigned": value.KindInt32,
	"int unsigned":       value.KindInt64,
	"integer unsigned":   value.KindInt64,
	"bigint":             value.KindInt64,
	"bigint unsigned":    value.KindDecimal,

	"float":            value.KindFloat32,
	"float unsigned":   value.KindFloat32,
	"double":           value.KindFloat64,
	"double unsigned":  value.KindFloat64,
	"decimal":          value.KindDecimal,
	"decimal unsigned": value.KindDecimal,
	"numeric":          value.KindDecimal,

	"boolean": value.KindBool,
	"bool":    value.KindBool,
	"bit":     value.KindBool,

	"datetime":  value.KindDateTime,
	"timestamp": value.KindDateTimeOffset,
	"date":      value.KindDate,
	"time":      value.KindTime,
}

func init() {
	registerDialect(config.MySQL, &Dialect{
		Name:        "mysql",
		DriverName:  "mysql",
		DefaultPort: 3306,
		Types:       mysqlTypes,
		Literals:    value.LiteralStyle{True: "TRUE", False: "FALSE", EscapeBackslash: true},
		DSN:         mysqlDSN,
		Introspect:  introspectMySQL,
		TablesQuery: `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name`,
	})
}

// mysqlDSN pins the session time_zone to UTC unless params set one: TIMESTAMP values
// are rendered in the session zone and exported with a +00:00 offset.
func mysqlDSN(d config.Database, defaultPort int) (string, error) {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.Address(defaultPort)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = make(map[string]string, len(d.Params)+1)
	cfg.Params["time_zone"] = "'+00:00'"
	for k, v := range d.Params {
		cfg.Params[k] = v
	}
	return cfg.FormatDSN(), nil
}

// introspectMySQL reads DESCRIBE output, which reports every physical column with its
// full type text ("int(11) unsigned", "varchar(100)").
func introspectMySQL(ctx context.Context, db *sqlx.DB, table string) ([]Column, error) {
	rows, err := db.QueryxContext(ctx, "DESCRIBE "+table)
	if err != nil {
		return nil, fmt.Errorf("error describing table: %w", err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("error scanning table description: %w", err)
		}
		name, typ := catalogText(row["Field"]), catalogText(row["Type"])
		if name == "" || typ == "" {
			return nil, fmt.Errorf("unexpected DESCRIBE row: %v", row)
		}
		cols = append(cols, Column{Name: name, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return cols, nil
}

func catalogText(v any) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
