// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package load reads input files for the jpack command, decompressing them
// according to their file extension.
package load

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Formats lists the recognized compressed file extensions.
var Formats = []string{".gz", ".zst", ".s2", ".lz4"}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("create zstd decoder: %v", err))
		}
		return dec
	},
}

// File reads the contents of the named file. If the name ends in one of the
// extensions listed in Formats, the contents are decompressed. The name "-"
// reads standard input, uncompressed.
func File(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Decompress(path, data)
}

// Decompress decompresses data according to the extension of name. Data
// whose name has no recognized extension is returned unchanged.
func Decompress(name string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var out []byte
	var err error
	switch ext {
	case ".gz":
		out, err = gunzip(data)
	case ".zst":
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(dec)
		out, err = dec.DecodeAll(data, nil)
	case ".s2":
		out, err = s2.Decode(nil, data)
	case ".lz4":
		out, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %s decompression failed: %w", name, ext, err)
	}
	return out, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
