// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creachadair/jpack/internal/config"
	"github.com/creachadair/jpack/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewConfig(t *testing.T) {
	cfg := config.NewConfig()
	assert.Equal(t, 1024, cfg.Decode.BlockLen)
	assert.False(t, cfg.Decode.Comments)
	assert.False(t, cfg.Log.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "jpack.yml", `
decode:
  comments: true
  trailing_commas: true
  intern: true
  max_bytes: 65536
log:
  debug: true
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	want := &config.Config{
		Decode: config.DecodeConfig{
			Comments:       true,
			TrailingCommas: true,
			Intern:         true,
			MaxBytes:       65536,
			BlockLen:       1024, // default
		},
		Log: config.LogConfig{Debug: true},
	}
	assert.Equal(t, want, cfg)
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := config.LoadConfig(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"UnknownKey", "decode:\n  comment: true\n", "failed to parse config file"},
		{"WrongType", "decode:\n  max_bytes: lots\n", "failed to parse config file"},
		{"Negative", "decode:\n  block_len: -1\n", "invalid block_len -1"},
		{"NegativeMax", "decode:\n  max_bytes: -5\n", "invalid max_bytes -5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeFile(t, "bad.yml", tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nonesuch.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o700))
	want := filepath.Join(root, ".jpack.yaml")
	require.NoError(t, os.WriteFile(want, []byte("log:\n  debug: true\n"), 0o600))

	t.Chdir(sub)
	got := config.FindConfigFile()
	// The temporary directory may be reached through a symlink.
	gotInfo, err := os.Stat(got)
	require.NoError(t, err)
	wantInfo, err := os.Stat(want)
	require.NoError(t, err)
	assert.True(t, os.SameFile(wantInfo, gotInfo), "found %q, want %q", got, want)
}

func TestOptions(t *testing.T) {
	const input = `{"a": "x", "b": "x", /* note */ "c": [1, 2],}`

	cfg := config.NewConfig()
	_, err := tree.Decode([]byte(input), cfg.Options(nil)...)
	require.Error(t, err, "default options accept comments")

	cfg.Decode.Comments = true
	cfg.Decode.TrailingCommas = true
	v, err := tree.Decode([]byte(input), cfg.Options(nil)...)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())

	cfg.Decode.MaxBytes = 16
	_, err = tree.Decode([]byte(input), cfg.Options(nil)...)
	require.ErrorIs(t, err, tree.ErrExhausted)

	// With an explicit arena, its own settings apply.
	cfg.Decode.MaxBytes = 0
	cfg.Decode.CopyStrings = true
	cfg.Decode.Intern = true
	arena := tree.NewArena(cfg.ArenaOptions())
	_, err = tree.Decode([]byte(input), cfg.Options(arena)...)
	require.NoError(t, err)
	st := arena.Stats()
	assert.Equal(t, 1, st.Interned)
	assert.Equal(t, len("axbc"), st.StringBytes)
}
