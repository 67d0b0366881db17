// Package dbexport exports configured table columns from a SQL database into JSON
// documents or INSERT scripts. Each supported engine is a Dialect behind the Backend
// interface; the Writer drives introspection, the data query and file output.
package dbexport

import (
	"context"
	"fmt"
	"io"
)

// ListTables prints the base tables of the connected database.
func ListTables(ctx context.Context, b Backend, w io.Writer) error {
	tables, err := b.ListTables(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Tables in the database:")
	for _, t := range tables {
		fmt.Fprintln(w, t)
	}
	return nil
}

// Field is one catalog column with the kind it would be exported as.
type Field struct {
	Name   string
	Native string
	Kind   string
}

// DescribeTable introspects a table and resolves every column. Columns whose type
// cannot be exported report the kind "unsupported".
func DescribeTable(ctx context.Context, b Backend, table string) ([]Field, error) {
	schema, err := b.Introspect(ctx, table)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, len(schema.Columns))
	for i, c := range schema.Columns {
		kind := "unsupported"
		if k, err := b.Resolve(c.Type); err == nil {
			kind = k.String()
		}
		fields[i] = Field{Name: c.Name, Native: c.Type, Kind: kind}
	}
	return fields, nil
}

// ListFields prints the columns of a table as a tab-separated listing.
func ListFields(ctx context.Context, b Backend, table string, w io.Writer) error {
	fields, err := DescribeTable(ctx, b, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Fields in table '%s':\n", table)
	fmt.Fprintln(w, "Column Name\tType\tKind")
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Native, f.Kind)
	}
	return nil
}
