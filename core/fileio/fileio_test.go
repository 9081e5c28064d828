package fileio

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := map[string]Compression{
		"pred.txt":     CompressionNone,
		"pred.zst":     CompressionZSTD,
		"pred.ZSTD":    CompressionZSTD,
		"out/pred.gz":  CompressionGzip,
		"pred.txt.lz4": CompressionLZ4,
		"pred":         CompressionNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, Detect(path), path)
	}
}

func TestCreateOpenRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("5:2.1 7:2.1 9:0.4\n"), 200)

	for _, name := range []string{"p.txt", "p.zst", "p.gz", "p.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			w, err := Create(path)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, got)
		})
	}
}

func TestNewReaderRejectsCorruptGzip(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("plain")), CompressionGzip)
	assert.Error(t, err)
}
