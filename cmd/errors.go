package cmd

import (
	"fmt"
	"strings"
)

const invalidTableHint = "check that the table or view exists in the database and is spelled correctly. " +
	"if it belongs to another schema, use the qualified name (for example: schema.table)"

var invalidTablePatterns = []string{
	"is not a valid object name",
	"invalid object name",
	"el nombre de objeto",
	"no es válido",
	"does not exist",
	"doesn't exist",
	"no existe",
	"object does not exist",
	"table does not exist",
	"invalid table name",
	"could not find object",
	"no such table",
	"catalog returned no columns",
}

// isInvalidTableError checks every wrapped error for text indicating a missing or
// invalid table.
func isInvalidTableError(err error) bool {
	if err == nil {
		return false
	}
	if matchesInvalidTable(err) {
		return true
	}
	logger.Debug().Err(err).Msg("error does not look like a missing table")
	return false
}

func matchesInvalidTable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pat := range invalidTablePatterns {
		if strings.Contains(msg, pat) {
			return true
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		if inner := u.Unwrap(); inner != nil {
			return matchesInvalidTable(inner)
		}
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if inner != nil && matchesInvalidTable(inner) {
				return true
			}
		}
	}
	return false
}

// withTableHint appends a spelling hint to errors caused by a missing table.
func withTableHint(err error) error {
	if !isInvalidTableError(err) {
		return err
	}
	return &hintError{err: err}
}

type hintError struct{ err error }

func (e *hintError) Error() string { return fmt.Sprintf("%v.\n\n%s", e.err, invalidTableHint) }
func (e *hintError) Unwrap() error { return e.err }
