package writer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapcorpus/snapcorpus/arch"
	"github.com/snapcorpus/snapcorpus/gen"
	"github.com/snapcorpus/snapcorpus/internal/writer"
)

func corpusImage(t *testing.T) []byte {
	t.Helper()
	buf, err := gen.Generate(arch.AMD64, nil, gen.DefaultOptions())
	require.NoError(t, err)
	return buf
}

func TestFileWriterWritesValidImage(t *testing.T) {
	buf := corpusImage(t)
	path := filepath.Join(t.TempDir(), "corpus.bin")

	w := &writer.FileWriter{Path: path}
	require.NoError(t, w.Write(buf))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, buf, got)
}

func TestFileWriterRejectsCorruptImage(t *testing.T) {
	buf := corpusImage(t)
	buf[len(buf)-1] ^= 0xff // corrupt a byte outside the checksum field

	path := filepath.Join(t.TempDir(), "corpus.bin")
	w := &writer.FileWriter{Path: path}
	require.Error(t, w.Write(buf))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "corrupt image must not be written to disk")
}

func TestMemWriterCapturesValidImage(t *testing.T) {
	buf := corpusImage(t)

	w := &writer.MemWriter{}
	require.NoError(t, w.Write(buf))
	require.Equal(t, buf, w.Buf)
}

func TestMemWriterRejectsTruncatedImage(t *testing.T) {
	buf := corpusImage(t)

	w := &writer.MemWriter{}
	err := w.Write(buf[:len(buf)-1])
	require.Error(t, err)
	require.Empty(t, w.Buf)
}
