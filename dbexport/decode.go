package dbexport

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"

	"tabledump/value"
)

// RowDecoder turns the positional cells of one result row into canonical values. Kinds
// are resolved once, when the decoder is built.
type RowDecoder struct {
	backend Backend
	table   string
	columns []string
	kinds   []value.Kind
}

// NewRowDecoder resolves the kind of every requested column. It fails before any data
// is read when a column is missing from the schema or has an unsupported type.
func NewRowDecoder(b Backend, schema *SchemaMap, columns []string) (*RowDecoder, error) {
	kinds := make([]value.Kind, len(columns))
	for i, col := range columns {
		native, err := schema.Lookup(col)
		if err != nil {
			return nil, err
		}
		k, err := b.Resolve(native)
		if err != nil {
			return nil, newError(ErrUnsupportedType, schema.Table, col, fmt.Errorf("%s type %q", b.Name(), native))
		}
		kinds[i] = k
	}
	return &RowDecoder{backend: b, table: schema.Table, columns: columns, kinds: kinds}, nil
}

// Kinds returns the resolved kind of each column, in column order.
func (d *RowDecoder) Kinds() []value.Kind { return d.kinds }

// Decode converts one scanned row. raw must hold one cell per requested column.
func (d *RowDecoder) Decode(raw []any) (value.Row, error) {
	if len(raw) != len(d.columns) {
		return value.Row{}, newError(ErrRowDecode, d.table, "",
			fmt.Errorf("expected %d cells, got %d", len(d.columns), len(raw)))
	}
	vals := make([]value.Value, len(raw))
	for i, cell := range raw {
		v, err := d.decodeCell(d.kinds[i], cell)
		if err != nil {
			return value.Row{}, newError(ErrRowDecode, d.table, d.columns[i], err)
		}
		vals[i] = v
	}
	return value.Row{Columns: d.columns, Values: vals}, nil
}

func (d *RowDecoder) decodeCell(k value.Kind, cell any) (value.Value, error) {
	if cell == nil {
		return value.Null(k), nil
	}
	switch k {
	case value.KindString:
		s, err := asString(cell)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case value.KindInt32:
		n, err := asInt64(cell)
		if err != nil {
			return value.Value{}, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return value.Value{}, fmt.Errorf("value %d out of int32 range", n)
		}
		return value.Int32(int32(n)), nil
	case value.KindInt64:
		n, err := asInt64(cell)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int64(n), nil
	case value.KindFloat32:
		f, err := asFloat64(cell)
		if err != nil {
			return value.Value{}, err
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return value.Value{}, fmt.Errorf("value %g out of float32 range", f)
		}
		return value.Float32(float32(f)), nil
	case value.KindFloat64:
		f, err := asFloat64(cell)
		if err != nil {
			return value.Value{}, err
		}
		return value.Float64(f), nil
	case value.KindDecimal:
		s, err := decimalText(cell)
		if err != nil {
			return value.Value{}, err
		}
		return value.Decimal(s)
	case value.KindBool:
		b, err := asBool(cell)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case value.KindUUID:
		id, err := d.asUUID(cell)
		if err != nil {
			return value.Value{}, err
		}
		return value.UUID(id), nil
	case value.KindDateTimeOffset:
		t, err := asTime(cell, offsetLayouts)
		if err != nil {
			return value.Value{}, err
		}
		return value.DateTimeOffset(t), nil
	case value.KindDateTime:
		t, err := asTime(cell, dateTimeLayouts)
		if err != nil {
			return value.Value{}, err
		}
		return value.DateTime(t), nil
	case value.KindDate:
		t, err := asTime(cell, dateLayouts)
		if err != nil {
			return value.Value{}, err
		}
		return value.Date(t), nil
	case value.KindTime:
		t, err := asTime(cell, timeLayouts)
		if err != nil {
			// MySQL TIME is an interval and may exceed one day or be negative.
			if s, ok := cellText(cell); ok {
				if v, serr := value.ParseTimeSpan(s); serr == nil {
					return v, nil
				}
			}
			return value.Value{}, err
		}
		return value.Time(t), nil
	}
	return value.Value{}, fmt.Errorf("no decoder for kind %s", k)
}

func asString(cell any) (string, error) {
	switch v := cell.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case duckdb.Decimal:
		return duckdbDecimalText(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("cannot convert %T to string", cell)
}

func asInt64(cell any) (int64, error) {
	switch v := cell.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of int64 range", v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of int64 range", v)
		}
		return int64(v), nil
	case []byte:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", cell)
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func asFloat64(cell any) (float64, error) {
	switch v := cell.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	}
	n, err := asInt64(cell)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to float", cell)
	}
	return float64(n), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q", s)
	}
	return f, nil
}

// decimalText returns the exact text of a decimal cell. Drivers send decimals as text,
// except SQLite which may store them as REAL or INTEGER.
func decimalText(cell any) (string, error) {
	switch v := cell.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("decimal value %v is not finite", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case duckdb.Decimal:
		return duckdbDecimalText(v), nil
	case *big.Int:
		if v == nil {
			return "", fmt.Errorf("nil big integer")
		}
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	n, err := asInt64(cell)
	if err != nil {
		return "", fmt.Errorf("cannot convert %T to decimal", cell)
	}
	return strconv.FormatInt(n, 10), nil
}

// asBool accepts booleans, the integers 0 and 1, single-byte BIT values and boolean text.
func asBool(cell any) (bool, error) {
	switch v := cell.(type) {
	case bool:
		return v, nil
	case []byte:
		if len(v) == 1 && v[0] <= 1 {
			return v[0] == 1, nil
		}
		return parseBool(string(v))
	case string:
		return parseBool(v)
	}
	n, err := asInt64(cell)
	if err != nil {
		return false, fmt.Errorf("cannot convert %T to bool", cell)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("value %d is not a boolean", n)
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}

func (d *RowDecoder) asUUID(cell any) (uuid.UUID, error) {
	switch v := cell.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case []byte:
		if len(v) == 16 {
			id, err := d.backend.DecodeUUID(v)
			if err != nil {
				return uuid.Nil, fmt.Errorf("invalid uuid bytes: %w", err)
			}
			return id, nil
		}
		return parseUUID(string(v))
	case string:
		return parseUUID(v)
	case fmt.Stringer:
		return parseUUID(v.String())
	}
	return uuid.Nil, fmt.Errorf("cannot convert %T to uuid", cell)
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid %q", s)
	}
	return id, nil
}

var (
	offsetLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999-07",
		"2006-01-02 15:04:05.999999999 -0700 MST",
	}
	dateTimeLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02",
	}
	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		time.RFC3339Nano,
	}
	timeLayouts = []string{
		"15:04:05.999999999",
		"15:04",
	}
)

func cellText(cell any) (string, bool) {
	switch v := cell.(type) {
	case []byte:
		return string(v), true
	case string:
		return v, true
	}
	return "", false
}

func asTime(cell any, layouts []string) (time.Time, error) {
	var s string
	switch v := cell.(type) {
	case time.Time:
		return v, nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", cell)
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time text %q", s)
}
