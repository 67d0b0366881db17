package dbexport

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by the engine matches exactly one of these with errors.Is.
var (
	ErrConnection          = errors.New("connection error")
	ErrSchemaIntrospection = errors.New("schema introspection error")
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrMissingColumnSchema = errors.New("missing column schema")
	ErrRowDecode           = errors.New("row decode error")
	ErrIO                  = errors.New("io error")
)

// Error carries the table and column an engine failure relates to.
type Error struct {
	Kind   error
	Table  string
	Column string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Table != "" {
		b.WriteString(": table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(", column ")
		b.WriteString(e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, table, column string, err error) error {
	return &Error{Kind: kind, Table: table, Column: column, Err: err}
}
