// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirChecker is the host capability used to verify configured directories.
type DirChecker interface {
	ResolveDir(path string) error
}

// DirCheckerFunc adapts a function to DirChecker.
type DirCheckerFunc func(path string) error

func (f DirCheckerFunc) ResolveDir(path string) error { return f(path) }

// OSDirChecker checks directories on the local filesystem.
type OSDirChecker struct{}

func (OSDirChecker) ResolveDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}

// Config is the resolved, immutable compile configuration.
type Config struct {
	helperDirs     []string
	partialDirs    []string
	runtime        string
	inlineRequires bool
	extensions     []string
	knownHelpers   []string
	ignoreHelpers  bool
	ignorePartials bool
	debug          bool
}

// Default returns the configuration used when no options are given.
func Default() Config {
	return Config{
		runtime:        DefaultRuntime,
		inlineRequires: true,
		extensions:     copyStrings(DefaultExtensions),
	}
}

// Resolve applies defaults to opts and checks every configured directory.
func Resolve(opts Options, checker DirChecker) (Config, error) {
	cfg := Default()

	if opts.Runtime != nil && len(*opts.Runtime) > 0 {
		cfg.runtime = *opts.Runtime
	}
	if opts.InlineRequires != nil {
		cfg.inlineRequires = *opts.InlineRequires
	}
	if exts := normalizeExtensions(opts.Extensions); len(exts) > 0 {
		cfg.extensions = exts
	}
	cfg.knownHelpers = nonEmptyStrings(opts.KnownHelpers)
	if opts.IgnoreHelpers != nil {
		cfg.ignoreHelpers = *opts.IgnoreHelpers
	}
	if opts.IgnorePartials != nil {
		cfg.ignorePartials = *opts.IgnorePartials
	}
	if opts.Debug != nil {
		cfg.debug = *opts.Debug
	}

	baseDir := opts.BaseDir
	if len(baseDir) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("Determining working directory: %s", err)
		}
		baseDir = wd
	}

	if checker == nil {
		checker = OSDirChecker{}
	}

	var err error

	cfg.helperDirs, err = resolveDirs("helper", opts.HelperDirs, baseDir, checker)
	if err != nil {
		return Config{}, err
	}

	cfg.partialDirs, err = resolveDirs("partial", opts.PartialDirs, baseDir, checker)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func resolveDirs(option string, dirs []string, baseDir string, checker DirChecker) ([]string, error) {
	var result []string
	for _, dir := range nonEmptyStrings(dirs) {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		dir = filepath.Clean(dir)

		err := checker.ResolveDir(dir)
		if err != nil {
			return nil, DirNotFoundError{Option: option, Path: dir, Err: err}
		}
		result = append(result, dir)
	}
	return result, nil
}

func normalizeExtensions(exts []string) []string {
	var result []string
	for _, ext := range nonEmptyStrings(exts) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		result = append(result, ext)
	}
	return result
}

func nonEmptyStrings(vals []string) []string {
	var result []string
	for _, val := range vals {
		val = strings.TrimSpace(val)
		if len(val) > 0 {
			result = append(result, val)
		}
	}
	return result
}

func (c Config) HelperDirs() []string   { return copyStrings(c.helperDirs) }
func (c Config) PartialDirs() []string  { return copyStrings(c.partialDirs) }
func (c Config) Runtime() string        { return c.runtime }
func (c Config) InlineRequires() bool   { return c.inlineRequires }
func (c Config) Extensions() []string   { return copyStrings(c.extensions) }
func (c Config) KnownHelpers() []string { return copyStrings(c.knownHelpers) }
func (c Config) IgnoreHelpers() bool    { return c.ignoreHelpers }
func (c Config) IgnorePartials() bool   { return c.ignorePartials }
func (c Config) Debug() bool            { return c.debug }

// PartialSearchDirs lists partial directories first, then helper directories.
func (c Config) PartialSearchDirs() []string {
	return append(c.PartialDirs(), c.helperDirs...)
}
