package dbexport

import (
	"fmt"
	"strings"
)

// Column is one catalog column with its native type descriptor.
type Column struct {
	Name string
	Type string
}

// SchemaMap is the catalog view of one table, in physical column order.
type SchemaMap struct {
	Table   string
	Columns []Column
	index   map[string]int
}

// NewSchemaMap builds a schema from catalog rows.
func NewSchemaMap(table string, cols []Column) *SchemaMap {
	s := &SchemaMap{Table: table, Columns: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		s.index[c.Name] = i
	}
	return s
}

// Lookup returns the native type of a column, matching the exact name first and then
// ignoring case.
func (s *SchemaMap) Lookup(column string) (string, error) {
	if i, ok := s.index[column]; ok {
		return s.Columns[i].Type, nil
	}
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, column) {
			return c.Type, nil
		}
	}
	return "", newError(ErrMissingColumnSchema, s.Table, column,
		fmt.Errorf("column not found in catalog (%d columns)", len(s.Columns)))
}
