package dbexport

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tabledump/config"
	"tabledump/value"
)

var mssqlTypes = TypeMap{
	"varchar":  value.KindString,
	"nvarchar": value.KindString,
	"char":     value.KindString,
	"nchar":    value.KindString,
	"text":     value.KindString,
	"ntext":    value.KindString,
	"xml":      value.KindString,

	"tinyint": value.KindInt32,
	"int":     value.KindInt32,
	"bigint":  value.KindInt64,

	// float is narrowed to Float32 regardless of its declared precision.
	"float": value.KindFloat32,
	"real":  value.KindFloat32,

	"decimal":    value.KindDecimal,
	"numeric":    value.KindDecimal,
	"money":      value.KindDecimal,
	"smallmoney": value.KindDecimal,

	"smallint": value.KindBool,
	"bit":      value.KindBool,

	"uniqueidentifier": value.KindUUID,

	// datetimeoffset drops its offset: only the wall clock is exported.
	"datetime":       value.KindDateTime,
	"datetime2":      value.KindDateTime,
	"smalldatetime":  value.KindDateTime,
	"datetimeoffset": value.KindDateTime,
	"date":           value.KindDate,
	"time":           value.KindTime,
}

const mssqlColumnsQuery = `SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = ?`

func init() {
	registerDialect(config.MSSQL, &Dialect{
		Name:          "mssql",
		DriverName:    "sqlserver",
		DefaultPort:   1433,
		Types:         mssqlTypes,
		Literals:      value.LiteralStyle{True: "1", False: "0", NationalPrefix: "N"},
		DSN:           mssqlDSN,
		Introspect:    introspectMSSQL,
		TablesQuery:   `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`,
		UUIDFromBytes: mssqlUUID,
	})
}

// mssqlDSN builds a sqlserver:// URL. A server of the form host\instance selects a
// named instance; encryption is disabled unless params say otherwise.
func mssqlDSN(d config.Database, defaultPort int) (string, error) {
	q := url.Values{}
	q.Set("database", d.Database)
	q.Set("encrypt", "disable")
	for k, v := range d.Params {
		q.Set(k, v)
	}
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(d.User, d.Password),
		RawQuery: q.Encode(),
	}
	if host, instance, ok := strings.Cut(d.Server, `\`); ok {
		u.Host = host
		if d.Port != 0 {
			u.Host = host + ":" + strconv.Itoa(d.Port)
		}
		u.Path = instance
	} else {
		u.Host = d.Address(defaultPort)
	}
	return u.String(), nil
}

// introspectMSSQL queries INFORMATION_SCHEMA.COLUMNS through the shared pool. A
// "schema.table" name also filters on TABLE_SCHEMA.
func introspectMSSQL(ctx context.Context, db *sqlx.DB, table string) ([]Column, error) {
	query := mssqlColumnsQuery
	args := []any{table}
	if schema, name, ok := strings.Cut(table, "."); ok {
		query += ` AND TABLE_SCHEMA = ?`
		args = []any{name, schema}
	}
	query += ` ORDER BY ORDINAL_POSITION`
	return scanColumns(ctx, db, db.Rebind(query), args...)
}

// mssqlUUID reorders the mixed-endian bytes SQL Server sends for uniqueidentifier.
func mssqlUUID(b []byte) (uuid.UUID, error) {
	var id mssql.UniqueIdentifier
	if err := id.Scan(b); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(id.String())
}
