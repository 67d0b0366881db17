package dbexport

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-table export counters on a private registry, so a run can dump
// them to a node_exporter textfile when it finishes.
type Metrics struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabledump_rows_exported_total",
			Help: "Rows written to export files",
		}, []string{"table", "format"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabledump_bytes_written_total",
			Help: "Bytes written to export files after compression",
		}, []string{"table", "format"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabledump_export_duration_seconds",
			Help:    "Wall time of one table export",
			Buckets: prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"table", "format"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabledump_export_failures_total",
			Help: "Failed table exports by error kind",
		}, []string{"table", "kind"}),
	}
	m.registry.MustRegister(m.rows, m.bytes, m.duration, m.failures)
	return m
}

// WriteFile writes the registry in text exposition format, atomically.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observe(res Result, f Format, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(res.Table, ErrorKind(err)).Inc()
		return
	}
	m.rows.WithLabelValues(res.Table, string(f)).Add(float64(res.Rows))
	m.bytes.WithLabelValues(res.Table, string(f)).Add(float64(res.Bytes))
	m.duration.WithLabelValues(res.Table, string(f)).Observe(res.Elapsed.Seconds())
}

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrConnection, "connection"},
	{ErrSchemaIntrospection, "schema_introspection"},
	{ErrUnsupportedType, "unsupported_type"},
	{ErrMissingColumnSchema, "missing_column_schema"},
	{ErrRowDecode, "row_decode"},
	{ErrIO, "io"},
}

// ErrorKind names the engine error kind of err, or "other".
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "other"
}
