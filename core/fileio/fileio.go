// Package fileio opens prediction and dataset files, compressing or
// decompressing them transparently by file extension (.zst, .gz, .lz4).
package fileio

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

// Compression identifies a stream codec.
type Compression uint8

const (
	// CompressionNone writes plain text.
	CompressionNone Compression = iota
	// CompressionZSTD uses zstd framing.
	CompressionZSTD
	// CompressionGzip uses gzip framing.
	CompressionGzip
	// CompressionLZ4 uses lz4 frame format.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionZSTD:
		return "zstd"
	case CompressionGzip:
		return "gzip"
	case CompressionLZ4:
		return "lz4"
	}
	return "none"
}

// Detect picks the codec from the file extension.
func Detect(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".gz":
		return CompressionGzip
	case ".lz4":
		return CompressionLZ4
	}
	return CompressionNone
}

// Create truncates path and returns a writer compressing with the codec
// Detect chooses. Close flushes the codec and closes the file.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", path)
	}
	w, err := NewWriter(f, Detect(path))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Open returns a reader decompressing path with the codec Detect chooses.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	r, err := NewReader(f, Detect(path))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// NewWriter wraps w. Closing the result closes w when w is an io.Closer.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	var enc io.WriteCloser
	switch c {
	case CompressionNone:
		return plainWriter{w}, nil
	case CompressionZSTD:
		z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd writer")
		}
		enc = z
	case CompressionGzip:
		enc = gzip.NewWriter(w)
	case CompressionLZ4:
		enc = lz4.NewWriter(w)
	default:
		return nil, errors.NewValidationError("compression", "unknown codec", c)
	}
	return &stackedWriter{WriteCloser: enc, under: w}, nil
}

// NewReader wraps r. Closing the result closes r when r is an io.Closer.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		if rc, ok := r.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(r), nil
	case CompressionZSTD:
		z, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create zstd reader")
		}
		return &stackedReader{Reader: z, closeDec: func() error { z.Close(); return nil }, under: r}, nil
	case CompressionGzip:
		g, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read gzip header")
		}
		return &stackedReader{Reader: g, closeDec: g.Close, under: r}, nil
	case CompressionLZ4:
		return &stackedReader{Reader: lz4.NewReader(r), under: r}, nil
	}
	return nil, errors.NewValidationError("compression", "unknown codec", c)
}

type stackedWriter struct {
	io.WriteCloser
	under io.Writer
}

func (s *stackedWriter) Close() error {
	err := s.WriteCloser.Close()
	if c, ok := s.under.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type stackedReader struct {
	io.Reader
	closeDec func() error
	under    io.Reader
}

func (s *stackedReader) Close() error {
	var err error
	if s.closeDec != nil {
		err = s.closeDec()
	}
	if c, ok := s.under.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type plainWriter struct {
	io.Writer
}

func (p plainWriter) Close() error {
	if c, ok := p.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
