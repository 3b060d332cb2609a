package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestFile_MatchesSHA256(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := DigestFile(path)
	require.NoError(t, err)

	want := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(want[:]), got)
}

func TestDigestFile_StreamsLargeFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")

	f, err := os.Create(path)
	require.NoError(t, err)
	buf := make([]byte, chunkSize)
	for i := 0; i < 3; i++ {
		for j := range buf {
			buf[j] = byte(i + j)
		}
		_, err := f.Write(buf)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	got, err := DigestFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 64)
}

func TestDigestFile_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := DigestFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrFileVanished)
}

func TestDigestFile_Directory(t *testing.T) {
	t.Parallel()
	_, err := DigestFile(t.TempDir())
	assert.ErrorIs(t, err, ErrFileVanished)
}
