package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"tabledump/dbexport"
)

func TestIsInvalidTableError_Nil(t *testing.T) {
	if isInvalidTableError(nil) {
		t.Error("expected false for nil error")
	}
}

type customErr struct{ msg string }

func (e customErr) Error() string { return e.msg }

func TestIsInvalidTableError_CustomError(t *testing.T) {
	if isInvalidTableError(customErr{"permission denied"}) {
		t.Error("expected false for custom error")
	}
}

func TestIsInvalidTableError_MatchesPatterns(t *testing.T) {
	patterns := []string{
		"is not a valid object name",
		"invalid object name",
		"el nombre de objeto",
		"no es válido",
		"does not exist",
		"Table 'shop.ghosts' doesn't exist",
		"no existe",
		"object does not exist",
		"table does not exist",
		"invalid table name",
		"could not find object",
		"no such table",
	}
	for _, pat := range patterns {
		err := fmt.Errorf("some error: %s", pat)
		if !isInvalidTableError(err) {
			t.Errorf("expected true for pattern: %q", pat)
		}
	}
}

func TestIsInvalidTableError_CombinedSpanish(t *testing.T) {
	err := fmt.Errorf("el nombre de objeto foo no es válido")
	if !isInvalidTableError(err) {
		t.Error("expected true for combined Spanish error")
	}
}

type opaqueErr struct{ inner error }

func (e opaqueErr) Error() string { return "query failed" }
func (e opaqueErr) Unwrap() error { return e.inner }

func TestIsInvalidTableError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("wrap1: %w", opaqueErr{errors.New("invalid object name")})
	if !isInvalidTableError(wrapped) {
		t.Error("expected true for wrapped error")
	}
	joined := errors.Join(errors.New("first"), opaqueErr{errors.New("no such table: ghosts")})
	if !isInvalidTableError(joined) {
		t.Error("expected true for joined error")
	}
}

func TestIsInvalidTableError_NoMatch(t *testing.T) {
	err := errors.New("some unrelated error")
	if isInvalidTableError(err) {
		t.Error("expected false for unrelated error")
	}
}

func TestWithTableHint(t *testing.T) {
	if withTableHint(nil) != nil {
		t.Error("expected nil to pass through")
	}
	plain := errors.New("login failed")
	if withTableHint(plain) != plain {
		t.Error("unrelated errors must not be wrapped")
	}
	base := fmt.Errorf("%w: no such table: ghosts", dbexport.ErrConnection)
	err := withTableHint(base)
	if !errors.Is(err, dbexport.ErrConnection) {
		t.Errorf("hint must keep the error chain: %v", err)
	}
	if !strings.HasPrefix(err.Error(), base.Error()+".\n\n") || !strings.Contains(err.Error(), invalidTableHint) {
		t.Errorf("unexpected hint message: %q", err.Error())
	}
}
