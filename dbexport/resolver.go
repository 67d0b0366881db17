package dbexport

import (
	"fmt"
	"strings"

	"tabledump/value"
)

// TypeMap maps a normalized native type name to its canonical kind.
type TypeMap map[string]value.Kind

// NormalizeType lower-cases a catalog type descriptor, removes every parenthesized
// parameter group and collapses whitespace: "DECIMAL(10, 2) UNSIGNED" becomes
// "decimal unsigned".
func NormalizeType(native string) string {
	var b strings.Builder
	depth := 0
	for _, r := range strings.ToLower(native) {
		switch {
		case r == '(':
			depth++
			b.WriteByte(' ')
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Resolve returns the canonical kind for a native descriptor.
func (m TypeMap) Resolve(native string) (value.Kind, error) {
	if k, ok := m[NormalizeType(native)]; ok {
		return k, nil
	}
	return value.KindInvalid, fmt.Errorf("%w: %q", ErrUnsupportedType, native)
}
