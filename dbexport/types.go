package dbexport

import (
	"fmt"
	"strings"
)

// Rows is the subset of *sql.Rows the writer consumes. Tests substitute their own.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Format selects the output document type. It implements pflag.Value.
type Format string

const (
	FormatJSON Format = "json"
	FormatSQL  Format = "sql"
)

func (f Format) String() string { return string(f) }
func (f Format) Type() string   { return "format" }

func (f *Format) Set(s string) error {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		*f = FormatJSON
	case FormatSQL:
		*f = FormatSQL
	default:
		return fmt.Errorf("unknown export type %q (expected json or sql)", s)
	}
	return nil
}

// Compression selects the codec applied to output files. It implements pflag.Value.
type Compression string

const (
	CompressNone Compression = "none"
	CompressGzip Compression = "gzip"
	CompressZstd Compression = "zstd"
)

func (c Compression) String() string { return string(c) }
func (c Compression) Type() string   { return "compression" }

func (c *Compression) Set(s string) error {
	switch Compression(strings.ToLower(s)) {
	case CompressNone, "":
		*c = CompressNone
	case CompressGzip, "gz":
		*c = CompressGzip
	case CompressZstd, "zst":
		*c = CompressZstd
	default:
		return fmt.Errorf("unknown compression %q (expected none, gzip or zstd)", s)
	}
	return nil
}

// Ext is the file name suffix added by the codec.
func (c Compression) Ext() string {
	switch c {
	case CompressGzip:
		return ".gz"
	case CompressZstd:
		return ".zst"
	}
	return ""
}
