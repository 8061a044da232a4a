// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jpack decodes JSON configuration files and prints their contents.
//
// Usage:
//
//	jpack [flags] tree FILE [--path a.b.0]
//	jpack [flags] user FILE
//	jpack [flags] cards FILE
//
// Input files named with a .gz, .zst, .s2, or .lz4 extension are
// decompressed before decoding. Settings are read from the file named by
// --config, or else from the nearest .jpack.yml in the current directory or
// its parents. Flags override the settings file.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/creachadair/jpack/convert"
	"github.com/creachadair/jpack/gamecfg"
	"github.com/creachadair/jpack/internal/config"
	"github.com/creachadair/jpack/internal/load"
	"github.com/creachadair/jpack/tree"
	"github.com/creachadair/jpack/tree/cursor"
	"go.uber.org/zap"
)

type cliArgs struct {
	Config         string `help:"Path of the YAML settings file." type:"path"`
	Debug          bool   `help:"Enable debug logging." short:"d"`
	Comments       bool   `help:"Allow comments in the input."`
	TrailingCommas bool   `help:"Allow trailing commas in the input."`
	CopyStrings    bool   `help:"Copy all string text out of the input buffer."`
	Intern         bool   `help:"Share storage among equal strings."`
	MaxBytes       int64  `help:"Maximum bytes of tree storage per decode (0 means no limit)."`

	Tree  treeCmd  `cmd:"" help:"Print the decoded tree of a file."`
	User  userCmd  `cmd:"" help:"Print a user account record."`
	Cards cardsCmd `cmd:"" help:"Print the month-card offers of a shop record."`
}

// env is the environment shared by all subcommands.
type env struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "jpack: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var cli cliArgs
	parser, err := kong.New(&cli,
		kong.Name("jpack"),
		kong.Description("Decode JSON configuration files and print their contents."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(&cli)
	if err != nil {
		return err
	}
	log := zap.NewNop()
	if cfg.Log.Debug {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	}
	defer func() { _ = log.Sync() }()

	return kctx.Run(&env{cfg: cfg, log: log, out: stdout})
}

// loadConfig reads the settings file, if any, and applies the flags of cli.
func loadConfig(cli *cliArgs) (*config.Config, error) {
	path := cli.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg := config.NewConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	d := &cfg.Decode
	d.Comments = d.Comments || cli.Comments
	d.TrailingCommas = d.TrailingCommas || cli.TrailingCommas
	d.CopyStrings = d.CopyStrings || cli.CopyStrings
	d.Intern = d.Intern || cli.Intern
	if cli.MaxBytes != 0 {
		d.MaxBytes = cli.MaxBytes
	}
	cfg.Log.Debug = cfg.Log.Debug || cli.Debug
	return cfg, cfg.Validate()
}

// decode loads and decodes the named file, and logs statistics about the
// decoding.
func (e *env) decode(path string) (tree.Value, error) {
	start := time.Now()
	data, err := load.File(path)
	if err != nil {
		return tree.Nil, err
	}
	arena := tree.NewArena(e.cfg.ArenaOptions())
	v, err := tree.Decode(data, e.cfg.Options(arena)...)
	st := arena.Stats()
	e.log.Debug("decoded input",
		zap.String("file", path),
		zap.Int("input_bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("arena_bytes", st.Bytes),
		zap.Int("arena_blocks", st.Blocks),
		zap.Int("string_bytes", st.StringBytes),
		zap.Int("values", st.Values),
		zap.Int("pairs", st.Pairs),
		zap.Int("interned", st.Interned),
		zap.Error(err),
	)
	if err != nil {
		return tree.Nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

type treeCmd struct {
	File string `arg:"" help:"Input file, or - for stdin."`
	Path string `help:"Dot-separated path of the value to print, e.g. a.b.0."`
}

func (c *treeCmd) Run(e *env) error {
	v, err := e.decode(c.File)
	if err != nil {
		return err
	}
	if c.Path != "" {
		var path []any
		for _, elt := range strings.Split(c.Path, ".") {
			path = append(path, elt)
		}
		v, err = cursor.Path(v, path...)
		if err != nil {
			return fmt.Errorf("path %q: %w", c.Path, err)
		}
	}
	fmt.Fprintln(e.out, v)
	return nil
}

type userCmd struct {
	File string `arg:"" help:"Input file, or - for stdin."`
}

func (c *userCmd) Run(e *env) error {
	var info gamecfg.AllUserInfo
	if err := e.decodeInto(c.File, &info); err != nil {
		return err
	}
	u := info.User
	fmt.Fprintf(e.out, "Gold: %d\n", u.Currency.Gold)
	fmt.Fprintf(e.out, "Energy: %d\n", u.Currency.Energy)
	fmt.Fprintf(e.out, "Uin: %d\n", u.Uin)
	fmt.Fprintf(e.out, "GroupID: %d\n", u.GroupID)
	fmt.Fprintf(e.out, "Level: %d\n", u.Level)
	fmt.Fprintf(e.out, "Msg: %d\n", info.Status["msg"])
	fmt.Fprintf(e.out, "Ret: %d\n", info.Status["ret"])
	return nil
}

type cardsCmd struct {
	File string `arg:"" help:"Input file, or - for stdin."`
}

func (c *cardsCmd) Run(e *env) error {
	var cards gamecfg.MonthCardInfo
	if err := e.decodeInto(c.File, &cards); err != nil {
		return err
	}
	for _, id := range cards.Keys() {
		item := cards[id]
		fmt.Fprintf(e.out, "%d: %s, %s, %s, %d\n", id, item.Name, item.Icon, item.Desc, item.Cost)
	}
	return nil
}

// decodeInto decodes the named file and converts the result into dst.
func (e *env) decodeInto(path string, dst any) error {
	v, err := e.decode(path)
	if err != nil {
		return err
	}
	if err := convert.Into(v, dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
