package dbexport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// outputFile stages a table export in a temporary file next to its final path. The
// final file only appears, atomically, on commit.
type outputFile struct {
	path  string
	tmp   *os.File
	buf   *bufio.Writer
	codec io.WriteCloser
	hash  *xxh3.Hasher
	size  int64
	w     io.Writer
}

func createOutput(dir, name string, c Compression) (*outputFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	o := &outputFile{
		path: filepath.Join(dir, name),
		tmp:  tmp,
		buf:  bufio.NewWriterSize(tmp, 64*1024),
		hash: xxh3.New(),
	}
	sink := io.MultiWriter(o.buf, o.hash, countWriter{&o.size})
	switch c {
	case CompressGzip:
		o.codec = gzip.NewWriter(sink)
	case CompressZstd:
		enc, err := zstd.NewWriter(sink)
		if err != nil {
			o.abort()
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		o.codec = enc
	}
	o.w = sink
	if o.codec != nil {
		o.w = o.codec
	}
	return o, nil
}

func (o *outputFile) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// commit flushes every layer, syncs and renames the file into place.
func (o *outputFile) commit() error {
	if o.codec != nil {
		if err := o.codec.Close(); err != nil {
			return fmt.Errorf("error finishing compression: %w", err)
		}
	}
	if err := o.buf.Flush(); err != nil {
		return fmt.Errorf("error flushing output file: %w", err)
	}
	if err := o.tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("error setting output file mode: %w", err)
	}
	if err := o.tmp.Sync(); err != nil {
		return fmt.Errorf("error syncing output file: %w", err)
	}
	if err := o.tmp.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}
	if err := os.Rename(o.tmp.Name(), o.path); err != nil {
		os.Remove(o.tmp.Name())
		return fmt.Errorf("error renaming output file: %w", err)
	}
	return nil
}

// abort discards the staged file. Safe to call after a failed commit.
func (o *outputFile) abort() {
	if o.codec != nil {
		o.codec.Close()
	}
	o.tmp.Close()
	os.Remove(o.tmp.Name())
}

func (o *outputFile) checksum() string {
	return fmt.Sprintf("%016x", o.hash.Sum64())
}

type countWriter struct{ n *int64 }

func (c countWriter) Write(p []byte) (int, error) {
	*c.n += int64(len(p))
	return len(p), nil
}
