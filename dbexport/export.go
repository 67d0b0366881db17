package dbexport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tabledump/config"
	"tabledump/value"
)

const progressEvery = 10000

// Writer exports configured tables from one backend into files in one directory.
// Tables are exported one at a time over the backend's single pool.
type Writer struct {
	backend          Backend
	dir              string
	compression      Compression
	rowsPerStatement int
	timeout          time.Duration
	log              zerolog.Logger
	metrics          *Metrics
}

type Option func(*Writer)

func WithCompression(c Compression) Option {
	return func(w *Writer) { w.compression = c }
}

// WithRowsPerStatement starts a new INSERT statement every n rows in SQL output.
// Zero keeps all rows in one statement.
func WithRowsPerStatement(n int) Option {
	return func(w *Writer) { w.rowsPerStatement = n }
}

// WithTimeout bounds each table export, including streaming of its rows.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) { w.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(w *Writer) { w.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

func NewWriter(b Backend, dir string, opts ...Option) *Writer {
	w := &Writer{backend: b, dir: dir, compression: CompressNone, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Result describes one finished export.
type Result struct {
	Table    string
	Path     string
	Rows     int64
	Bytes    int64
	Checksum string
	Elapsed  time.Duration
}

func (w *Writer) ExportJSON(ctx context.Context, t config.Table) (Result, error) {
	return w.Export(ctx, t, FormatJSON)
}

func (w *Writer) ExportSQL(ctx context.Context, t config.Table) (Result, error) {
	return w.Export(ctx, t, FormatSQL)
}

// ExportAll exports tables in order and stops at the first failure.
func (w *Writer) ExportAll(ctx context.Context, tables []config.Table, f Format) ([]Result, error) {
	results := make([]Result, 0, len(tables))
	for _, t := range tables {
		res, err := w.Export(ctx, t, f)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Export writes one table. Output is staged and renamed into place only when every row
// has been written; on failure no file is left behind and a previous export survives.
func (w *Writer) Export(ctx context.Context, t config.Table, f Format) (res Result, err error) {
	start := time.Now()
	res.Table = t.Name
	log := w.log.With().Str("table", t.Name).Str("format", string(f)).Logger()
	defer func() {
		res.Elapsed = time.Since(start)
		w.metrics.observe(res, f, err)
	}()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	log.Info().Strs("columns", t.Columns).Msg("starting export")
	schema, err := w.backend.Introspect(ctx, t.Name)
	if err != nil {
		return res, err
	}
	dec, err := NewRowDecoder(w.backend, schema, t.Columns)
	if err != nil {
		return res, err
	}

	query := BuildSelectQuery(t)
	log.Debug().Str("query", query).Msg("querying rows")
	rows, err := w.backend.Query(ctx, query)
	if err != nil {
		return res, newError(ErrConnection, t.Name, "", fmt.Errorf("error querying table rows: %w", err))
	}
	defer rows.Close()

	out, err := createOutput(w.dir, OutputName(t.Name, f, w.compression), w.compression)
	if err != nil {
		return res, newError(ErrIO, t.Name, "", err)
	}
	committed := false
	defer func() {
		if !committed {
			out.abort()
		}
	}()

	enc := newRowEncoder(f, t, w.backend.LiteralStyle(), w.rowsPerStatement)
	n, err := w.stream(ctx, rows, dec, enc, out, log)
	res.Rows = n
	if err != nil {
		return res, err
	}
	if err := out.commit(); err != nil {
		return res, newError(ErrIO, t.Name, "", err)
	}
	committed = true

	res.Path = out.path
	res.Bytes = out.size
	res.Checksum = out.checksum()
	log.Info().Int64("rows", res.Rows).Int64("bytes", res.Bytes).Str("path", res.Path).
		Dur("elapsed", time.Since(start)).Msg("table exported")
	return res, nil
}

func (w *Writer) stream(ctx context.Context, rows Rows, dec *RowDecoder, enc rowEncoder, out *outputFile, log zerolog.Logger) (int64, error) {
	raw := make([]any, len(dec.columns))
	dest := make([]any, len(raw))
	for i := range raw {
		dest[i] = &raw[i]
	}
	var (
		count int64
		buf   []byte
		err   error
	)
	if _, err := out.Write(enc.begin()); err != nil {
		return 0, newError(ErrIO, dec.table, "", err)
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return count, newError(ErrRowDecode, dec.table, "", fmt.Errorf("error scanning row: %w", err))
		}
		row, err := dec.Decode(raw)
		if err != nil {
			return count, err
		}
		if buf, err = enc.row(buf[:0], count, row); err != nil {
			return count, newError(ErrRowDecode, dec.table, "", err)
		}
		if _, err = out.Write(buf); err != nil {
			return count, newError(ErrIO, dec.table, "", err)
		}
		count++
		if count%progressEvery == 0 {
			log.Debug().Int64("rows", count).Msg("export progress")
		}
	}
	if err = rows.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w (%w)", err, ctxErr)
		}
		return count, newError(ErrConnection, dec.table, "", fmt.Errorf("row error: %w", err))
	}
	if _, err = out.Write(enc.end(count)); err != nil {
		return count, newError(ErrIO, dec.table, "", err)
	}
	return count, nil
}

// rowEncoder renders the document framing and one row at a time.
type rowEncoder interface {
	begin() []byte
	row(dst []byte, i int64, r value.Row) ([]byte, error)
	end(n int64) []byte
}

func newRowEncoder(f Format, t config.Table, style value.LiteralStyle, rowsPerStatement int) rowEncoder {
	if f == FormatSQL {
		return &sqlEncoder{
			table:  t.Name,
			insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES ", t.Name, strings.Join(t.Columns, ",")),
			style:  style,
			every:  int64(rowsPerStatement),
		}
	}
	return jsonEncoder{}
}

// jsonEncoder writes a single array of flat objects: "[", rows joined by ",", "]".
type jsonEncoder struct{}

func (jsonEncoder) begin() []byte { return []byte{'['} }

func (jsonEncoder) row(dst []byte, i int64, r value.Row) ([]byte, error) {
	if i > 0 {
		dst = append(dst, ',')
	}
	return r.AppendJSON(dst)
}

func (jsonEncoder) end(int64) []byte { return []byte{']'} }

// sqlEncoder writes INSERT statements. The statement prefix is emitted with the first
// row so an empty result never yields "VALUES ;".
type sqlEncoder struct {
	table  string
	insert string
	style  value.LiteralStyle
	every  int64
}

func (e *sqlEncoder) begin() []byte { return nil }

func (e *sqlEncoder) row(dst []byte, i int64, r value.Row) ([]byte, error) {
	switch {
	case i == 0:
		dst = append(dst, e.insert...)
	case e.every > 0 && i%e.every == 0:
		dst = append(dst, ";\n"...)
		dst = append(dst, e.insert...)
	default:
		dst = append(dst, ',')
	}
	return r.AppendSQL(dst, e.style)
}

func (e *sqlEncoder) end(n int64) []byte {
	if n == 0 {
		return []byte("-- no rows exported from " + e.table)
	}
	return []byte{';'}
}
