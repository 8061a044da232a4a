// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package config loads the YAML configuration file of the jpack command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/creachadair/jpack/tree"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the jpack command.
type Config struct {
	Decode DecodeConfig `yaml:"decode"`
	Log    LogConfig    `yaml:"log"`
}

// DecodeConfig controls how input is decoded.
type DecodeConfig struct {
	Comments       bool  `yaml:"comments"`
	TrailingCommas bool  `yaml:"trailing_commas"`
	CopyStrings    bool  `yaml:"copy_strings"`
	Intern         bool  `yaml:"intern"`
	MaxBytes       int64 `yaml:"max_bytes"`
	BlockLen       int   `yaml:"block_len"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{Decode: DecodeConfig{BlockLen: 1024}}
}

// LoadConfig loads configuration from a YAML file. Settings absent from the
// file keep their default values, and unknown settings are an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports an error if c contains invalid settings.
func (c *Config) Validate() error {
	if c.Decode.MaxBytes < 0 {
		return fmt.Errorf("invalid max_bytes %d: must not be negative", c.Decode.MaxBytes)
	}
	if c.Decode.BlockLen < 0 {
		return fmt.Errorf("invalid block_len %d: must not be negative", c.Decode.BlockLen)
	}
	return nil
}

// FindConfigFile searches for a config file in the current directory and its
// parents, and returns its path. It returns "" if none is found.
func FindConfigFile() string {
	configNames := []string{".jpack.yml", ".jpack.yaml"}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Options returns the decoder options selected by c. The arena options are
// omitted when alloc != nil, in which case the decoder allocates from alloc.
func (c *Config) Options(alloc tree.Allocator) []tree.Option {
	var opts []tree.Option
	d := c.Decode
	if d.Comments {
		opts = append(opts, tree.WithComments())
	}
	if d.TrailingCommas {
		opts = append(opts, tree.WithTrailingCommas())
	}
	if d.CopyStrings {
		opts = append(opts, tree.WithCopyStrings())
	}
	if alloc != nil {
		return append(opts, tree.WithAllocator(alloc))
	}
	if d.Intern {
		opts = append(opts, tree.WithInterning())
	}
	if d.MaxBytes > 0 {
		opts = append(opts, tree.WithMaxBytes(d.MaxBytes))
	}
	if d.BlockLen > 0 {
		opts = append(opts, tree.WithBlockLen(d.BlockLen))
	}
	return opts
}

// ArenaOptions returns the arena settings selected by c.
func (c *Config) ArenaOptions() *tree.ArenaOptions {
	return &tree.ArenaOptions{
		MaxBytes: c.Decode.MaxBytes,
		BlockLen: c.Decode.BlockLen,
		Intern:   c.Decode.Intern,
	}
}
