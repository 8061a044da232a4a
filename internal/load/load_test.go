// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package load_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creachadair/jpack/internal/load"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testData = []byte(`{"4001": {"m_strName": "Month", "m_iCost": 30}, "pad": "` + strings.Repeat("x", 500) + `"}`)

func compress(t *testing.T, ext string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch ext {
	case ".gz":
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	case ".zst":
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer enc.Close()
		return enc.EncodeAll(data, nil)
	case ".s2":
		return s2.Encode(nil, data)
	case ".lz4":
		zw := lz4.NewWriter(&buf)
		_, err := zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	default:
		t.Fatalf("unknown extension %q", ext)
	}
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	for _, ext := range load.Formats {
		t.Run(ext, func(t *testing.T) {
			packed := compress(t, ext, testData)
			got, err := load.Decompress("input.json"+ext, packed)
			require.NoError(t, err)
			assert.Equal(t, testData, got)

			// Extensions are not case sensitive.
			got, err = load.Decompress("INPUT"+strings.ToUpper(ext), packed)
			require.NoError(t, err)
			assert.Equal(t, testData, got)
		})
	}
}

func TestDecompressPlain(t *testing.T) {
	for _, name := range []string{"input.json", "input", "input.gz.json"} {
		got, err := load.Decompress(name, testData)
		require.NoError(t, err)
		assert.Equal(t, testData, got, "name %q", name)
	}
}

func TestDecompressCorrupt(t *testing.T) {
	junk := []byte("this is not compressed data")
	for _, ext := range load.Formats {
		_, err := load.Decompress("bad"+ext, junk)
		require.Error(t, err, "extension %q", ext)
		assert.Contains(t, err.Error(), ext+" decompression failed")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.json")
	require.NoError(t, os.WriteFile(plain, testData, 0o600))
	got, err := load.File(plain)
	require.NoError(t, err)
	assert.Equal(t, testData, got)

	packed := filepath.Join(dir, "packed.json.zst")
	require.NoError(t, os.WriteFile(packed, compress(t, ".zst", testData), 0o600))
	got, err = load.File(packed)
	require.NoError(t, err)
	assert.Equal(t, testData, got)

	_, err = load.File(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
