// Package value holds the backend-agnostic representation of a decoded cell and its
// JSON and SQL-literal serializations.
package value

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which variant of Value is active.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindBool
	KindUUID
	KindDateTimeOffset
	KindDateTime
	KindDate
	KindTime
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindString:         "string",
	KindInt32:          "int32",
	KindInt64:          "int64",
	KindFloat32:        "float32",
	KindFloat64:        "float64",
	KindDecimal:        "decimal",
	KindBool:           "bool",
	KindUUID:           "uuid",
	KindDateTimeOffset: "datetimeoffset",
	KindDateTime:       "datetime",
	KindDate:           "date",
	KindTime:           "time",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Canonical text layouts.
const (
	LayoutDateTimeOffset = "2006-01-02 15:04:05.999999999-07:00"
	LayoutDateTime       = "2006-01-02 15:04:05.999999999"
	LayoutDate           = "2006-01-02"
	LayoutTime           = "15:04:05.999999999"
)

var (
	// ErrNotFinite is returned when a NaN or infinite float is serialized.
	ErrNotFinite = errors.New("float value is not finite")
	// ErrInvalidDecimal is returned for decimal text that is not a plain number.
	ErrInvalidDecimal = errors.New("invalid decimal text")
)

// Value is one decoded cell. The zero Value is invalid; use the constructors.
type Value struct {
	kind  Kind
	valid bool
	str   string
	num   int64
	flt   float64
	b     bool
	id    uuid.UUID
	ts    time.Time
	span  bool
}

// Null returns a value of kind k with no payload.
func Null(k Kind) Value { return Value{kind: k} }

func String(s string) Value   { return Value{kind: KindString, valid: true, str: s} }
func Int32(n int32) Value     { return Value{kind: KindInt32, valid: true, num: int64(n)} }
func Int64(n int64) Value     { return Value{kind: KindInt64, valid: true, num: n} }
func Float32(f float32) Value { return Value{kind: KindFloat32, valid: true, flt: float64(f)} }
func Float64(f float64) Value { return Value{kind: KindFloat64, valid: true, flt: f} }
func Bool(b bool) Value       { return Value{kind: KindBool, valid: true, b: b} }
func UUID(id uuid.UUID) Value { return Value{kind: KindUUID, valid: true, id: id} }

// DateTimeOffset keeps t's zone offset.
func DateTimeOffset(t time.Time) Value {
	return Value{kind: KindDateTimeOffset, valid: true, ts: t}
}

// DateTime keeps only the wall clock of t; its location is ignored.
func DateTime(t time.Time) Value {
	return Value{kind: KindDateTime, valid: true, ts: wall(t)}
}

// Date truncates t to its calendar day.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, valid: true, ts: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time keeps only the time of day of t.
func Time(t time.Time) Value {
	return Value{kind: KindTime, valid: true,
		ts: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// TimeSpan is a Time value that may fall outside a single day, as MySQL TIME does
// (-838:59:59 to 838:59:59). Its text is [-]HH:MM:SS[.fraction].
func TimeSpan(d time.Duration) Value {
	return Value{kind: KindTime, valid: true, num: int64(d), span: true}
}

var spanPattern = regexp.MustCompile(`^(-)?(\d{1,6}):([0-5]\d):([0-5]\d)(?:\.(\d{1,9}))?$`)

// ParseTimeSpan parses [-]H:MM:SS[.fraction] text with any number of hours.
func ParseTimeSpan(text string) (Value, error) {
	m := spanPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Value{}, fmt.Errorf("invalid time span %q", text)
	}
	h, _ := strconv.ParseInt(m[2], 10, 64)
	mins, _ := strconv.ParseInt(m[3], 10, 64)
	sec, _ := strconv.ParseInt(m[4], 10, 64)
	var frac int64
	if m[5] != "" {
		frac, _ = strconv.ParseInt(m[5]+strings.Repeat("0", 9-len(m[5])), 10, 64)
	}
	d := time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute +
		time.Duration(sec)*time.Second + time.Duration(frac)
	if m[1] == "-" {
		d = -d
	}
	return TimeSpan(d), nil
}

func formatSpan(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	frac := d - s*time.Second
	out := fmt.Sprintf("%s%02d:%02d:%02d", sign, int64(h), int64(m), int64(s))
	if frac > 0 {
		out += strings.TrimRight(fmt.Sprintf(".%09d", int64(frac)), "0")
	}
	return out
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Decimal builds a decimal from its exact text. The text is normalized so it is also a
// valid JSON number token ("+.50" becomes "0.50"); digits are never rounded.
func Decimal(text string) (Value, error) {
	text = strings.TrimSpace(text)
	if !decimalPattern.MatchString(text) {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, text)
	}
	return Value{kind: KindDecimal, valid: true, str: normalizeNumber(text)}, nil
}

func normalizeNumber(s string) string {
	sign := ""
	switch s[0] {
	case '-':
		sign, s = "-", s[1:]
	case '+':
		s = s[1:]
	}
	mant, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, exp = s[:i], s[i:]
	}
	intPart, frac, hasDot := strings.Cut(mant, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	out := sign + intPart
	if hasDot && frac != "" {
		out += "." + frac
	}
	return out + exp
}

func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return !v.valid }

// Interface returns the payload as a plain Go value, or nil for NULL.
func (v Value) Interface() any {
	if !v.valid {
		return nil
	}
	switch v.kind {
	case KindString, KindDecimal:
		return v.str
	case KindInt32:
		return int32(v.num)
	case KindInt64:
		return v.num
	case KindFloat32:
		return float32(v.flt)
	case KindFloat64:
		return v.flt
	case KindBool:
		return v.b
	case KindUUID:
		return v.id
	case KindTime:
		if v.span {
			return time.Duration(v.num)
		}
		return v.ts
	case KindDateTimeOffset, KindDateTime, KindDate:
		return v.ts
	}
	return nil
}

// Text returns the canonical text form of a non-NULL value. NULL yields "".
func (v Value) Text() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindString, KindDecimal:
		return v.str
	case KindInt32, KindInt64:
		return fmt.Sprint(v.num)
	case KindFloat32:
		return formatFloat(v.flt, 32)
	case KindFloat64:
		return formatFloat(v.flt, 64)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindUUID:
		return v.id.String()
	case KindDateTimeOffset:
		return v.ts.Format(LayoutDateTimeOffset)
	case KindDateTime:
		return v.ts.Format(LayoutDateTime)
	case KindDate:
		return v.ts.Format(LayoutDate)
	case KindTime:
		if v.span {
			return formatSpan(time.Duration(v.num))
		}
		return v.ts.Format(LayoutTime)
	}
	return ""
}

func (v Value) String() string {
	if !v.valid {
		return v.kind.String() + "(NULL)"
	}
	return v.kind.String() + "(" + v.Text() + ")"
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrNotFinite, f)
	}
	return nil
}
