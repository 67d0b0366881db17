package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LiteralStyle carries the dialect-specific parts of SQL literal rendering.
type LiteralStyle struct {
	True  string
	False string
	// EscapeBackslash doubles backslashes inside string literals (MySQL default mode).
	EscapeBackslash bool
	// NationalPrefix is prepended to string literals holding non-ASCII text (SQL Server "N").
	NationalPrefix string
}

// ANSI renders booleans as TRUE/FALSE and leaves backslashes alone.
var ANSI = LiteralStyle{True: "TRUE", False: "FALSE"}

// formatFloat follows encoding/json: plain notation for ordinary magnitudes, exponent
// notation outside [1e-6, 1e21).
func formatFloat(f float64, bits int) string {
	abs := math.Abs(f)
	fmtByte := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			fmtByte = 'e'
		}
	}
	s := strconv.FormatFloat(f, fmtByte, -1, bits)
	if fmtByte == 'e' {
		// clean up e-09 to e-9
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	return s
}

// AppendJSON appends the JSON form of v to dst.
func (v Value) AppendJSON(dst []byte) ([]byte, error) {
	if !v.valid {
		return append(dst, "null"...), nil
	}
	switch v.kind {
	case KindInt32, KindInt64:
		return strconv.AppendInt(dst, v.num, 10), nil
	case KindFloat32, KindFloat64:
		if err := checkFinite(v.flt); err != nil {
			return dst, err
		}
		return append(dst, v.Text()...), nil
	case KindDecimal:
		return append(dst, v.str...), nil
	case KindBool:
		return strconv.AppendBool(dst, v.b), nil
	default:
		return appendJSONString(dst, v.Text())
	}
}

func appendJSONString(dst []byte, s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return dst, err
	}
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...), nil
}

// SQLLiteral returns the SQL literal form of v.
func (v Value) SQLLiteral(style LiteralStyle) (string, error) {
	b, err := v.AppendSQL(nil, style)
	return string(b), err
}

// AppendSQL appends the SQL literal form of v to dst.
func (v Value) AppendSQL(dst []byte, style LiteralStyle) ([]byte, error) {
	if !v.valid {
		return append(dst, "NULL"...), nil
	}
	switch v.kind {
	case KindInt32, KindInt64:
		return strconv.AppendInt(dst, v.num, 10), nil
	case KindFloat32, KindFloat64:
		if err := checkFinite(v.flt); err != nil {
			return dst, err
		}
		return append(dst, v.Text()...), nil
	case KindDecimal:
		return append(dst, v.str...), nil
	case KindBool:
		if v.b {
			return append(dst, style.True...), nil
		}
		return append(dst, style.False...), nil
	case KindString:
		if style.NationalPrefix != "" && !isASCII(v.str) {
			dst = append(dst, style.NationalPrefix...)
		}
		return appendQuoted(dst, v.str, style.EscapeBackslash), nil
	default:
		return appendQuoted(dst, v.Text(), false), nil
	}
}

func appendQuoted(dst []byte, s string, escapeBackslash bool) []byte {
	dst = append(dst, '\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			dst = append(dst, '\'', '\'')
		case c == '\\' && escapeBackslash:
			dst = append(dst, '\\', '\\')
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '\'')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Row is one decoded result row: values in configured column order.
type Row struct {
	Columns []string
	Values  []Value
}

// AppendJSON appends the row as a flat JSON object with keys in column order.
func (r Row) AppendJSON(dst []byte) ([]byte, error) {
	var err error
	dst = append(dst, '{')
	for i, col := range r.Columns {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = appendJSONString(dst, col); err != nil {
			return dst, err
		}
		dst = append(dst, ':')
		if dst, err = r.Values[i].AppendJSON(dst); err != nil {
			return dst, err
		}
	}
	return append(dst, '}'), nil
}

// AppendSQL appends the row as a parenthesized, comma-joined tuple of SQL literals.
func (r Row) AppendSQL(dst []byte, style LiteralStyle) ([]byte, error) {
	var err error
	dst = append(dst, '(')
	for i, v := range r.Values {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = v.AppendSQL(dst, style); err != nil {
			return dst, err
		}
	}
	return append(dst, ')'), nil
}

func (r Row) String() string {
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = r.Columns[i] + "=" + v.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
