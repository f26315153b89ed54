// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/hbsmod/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	cfg, err := config.Resolve(config.Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultRuntime, cfg.Runtime())
	assert.True(t, cfg.InlineRequires())
	assert.Empty(t, cfg.HelperDirs())
	assert.Equal(t, []string{".hbs", ".handlebars"}, cfg.Extensions())
	assert.False(t, cfg.IgnoreHelpers())
	assert.False(t, cfg.Debug())
}

func TestNewOptionsFromQuery(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	require.NoError(t, os.Mkdir(first, 0700))
	require.NoError(t, os.Mkdir(second, 0700))

	query := fmt.Sprintf("?helperDirs[]=%s&helperDirs[]=%s&runtime=my-runtime&inlineRequires=false", first, second)

	opts, err := config.NewOptionsFromQuery(query)
	require.NoError(t, err)

	cfg, err := config.Resolve(opts, config.OSDirChecker{})
	require.NoError(t, err)

	assert.Equal(t, []string{first, second}, cfg.HelperDirs())
	assert.Equal(t, "my-runtime", cfg.Runtime())
	assert.False(t, cfg.InlineRequires())
}

func TestNewOptionsFromJSONQuery(t *testing.T) {
	opts, err := config.NewOptionsFromQuery(`?{"knownHelpers": ["t"], "inlineRequires": 0, "extensions": ["mustache"]}`)
	require.NoError(t, err)

	cfg, err := config.Resolve(opts, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"t"}, cfg.KnownHelpers())
	assert.False(t, cfg.InlineRequires())
	assert.Equal(t, []string{".mustache"}, cfg.Extensions())
}

func TestMalformedValuesFallBackToDefaults(t *testing.T) {
	opts, err := config.NewOptionsFromQuery("inlineRequires=maybe&runtime=")
	require.NoError(t, err)

	cfg, err := config.Resolve(opts, nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.HelperDirs())
	assert.True(t, cfg.InlineRequires())
	assert.Equal(t, config.DefaultRuntime, cfg.Runtime())

	cfg, err = config.Resolve(config.NewOptionsFromMap(map[string]interface{}{"helperDirs": "/a"}), nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.HelperDirs())
}

func TestQueryListKeysCollectEveryOccurrence(t *testing.T) {
	opts, err := config.NewOptionsFromQuery("helperDirs=/a&helperDirs[]=/b&helperDirs=/c&knownHelpers=x&extensions[]=.mustache")
	require.NoError(t, err)

	assert.Equal(t, []string{"/a", "/b", "/c"}, opts.HelperDirs)
	assert.Equal(t, []string{"x"}, opts.KnownHelpers)
	assert.Equal(t, []string{".mustache"}, opts.Extensions)

	again, err := config.NewOptionsFromQuery("helperDirs=/a&helperDirs[]=/b&helperDirs=/c&knownHelpers=x&extensions[]=.mustache")
	require.NoError(t, err)
	assert.Equal(t, opts, again)
}

func TestPlainMissingHelperDirIsFatal(t *testing.T) {
	opts, err := config.NewOptionsFromQuery("helperDirs=/does/not/exist")
	require.NoError(t, err)

	_, err = config.Resolve(opts, config.DirCheckerFunc(func(path string) error {
		return fmt.Errorf("not found: %s", path)
	}))
	require.Error(t, err)

	var dirErr config.DirNotFoundError
	require.True(t, errors.As(err, &dirErr))
	assert.Contains(t, err.Error(), "/does/not/exist")
}

func TestInlineRequiresWithoutValueIsTrue(t *testing.T) {
	opts, err := config.NewOptionsFromQuery("inlineRequires")
	require.NoError(t, err)
	require.NotNil(t, opts.InlineRequires)
	assert.True(t, *opts.InlineRequires)
}

func TestMissingDirIsFatal(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")

	opts := config.Options{HelperDirs: []string{missing}}

	_, err := config.Resolve(opts, config.OSDirChecker{})
	require.Error(t, err)

	var dirErr config.DirNotFoundError
	require.True(t, errors.As(err, &dirErr))
	assert.Equal(t, missing, dirErr.Path)
	assert.Contains(t, err.Error(), "Expected helper directory '"+missing+"' to exist")
}

func TestRelativeDirsUseBaseDirAndChecker(t *testing.T) {
	var checked []string
	checker := config.DirCheckerFunc(func(path string) error {
		checked = append(checked, path)
		return nil
	})

	opts := config.Options{
		HelperDirs:  []string{"helpers"},
		PartialDirs: []string{"partials", " "},
		BaseDir:     "/base",
	}

	cfg, err := config.Resolve(opts, checker)
	require.NoError(t, err)

	assert.Equal(t, []string{"/base/helpers", "/base/partials"}, checked)
	assert.Equal(t, []string{"/base/partials", "/base/helpers"}, cfg.PartialSearchDirs())
}

func TestConfigGettersReturnCopies(t *testing.T) {
	cfg, err := config.Resolve(config.Options{}, nil)
	require.NoError(t, err)

	exts := cfg.Extensions()
	exts[0] = ".changed"
	assert.Equal(t, ".hbs", cfg.Extensions()[0])
}

func TestMerge(t *testing.T) {
	inline := false
	runtime := "rt"

	base := config.Options{HelperDirs: []string{"a"}, Runtime: &runtime}
	override := config.Options{InlineRequires: &inline}

	merged := base.Merge(override)
	assert.Equal(t, []string{"a"}, merged.HelperDirs)
	assert.Equal(t, "rt", *merged.Runtime)
	assert.False(t, *merged.InlineRequires)

	merged = merged.Merge(config.Options{HelperDirs: []string{}})
	assert.Equal(t, []string{}, merged.HelperDirs)
}

func TestNewOptionsFromTOML(t *testing.T) {
	data := []byte(`
helperDirs = ["helpers"]
runtime = "custom"
inlineRequires = "no"
ignorePartials = true
partialDirs = "not-a-list"
`)

	opts, err := config.NewOptionsFromTOML(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"helpers"}, opts.HelperDirs)
	assert.Nil(t, opts.PartialDirs)
	assert.Equal(t, "custom", *opts.Runtime)
	assert.False(t, *opts.InlineRequires)
	assert.True(t, *opts.IgnorePartials)

	_, err = config.NewOptionsFromTOML([]byte("helperDirs = ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unmarshaling TOML options")
}

func TestNewOptionsFromTOMLFileAnchorsBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultOptionsFile)
	require.NoError(t, os.WriteFile(path, []byte(`helperDirs = ["."]`), 0600))

	opts, err := config.NewOptionsFromTOMLFile(path)
	require.NoError(t, err)

	cfg, err := config.Resolve(opts, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean(dir)}, cfg.HelperDirs())
}

func TestWithAbsDirs(t *testing.T) {
	opts, err := config.Options{
		HelperDirs:  []string{"helpers", "/abs/helpers"},
		PartialDirs: []string{},
		BaseDir:     "/base",
	}.WithAbsDirs()
	require.NoError(t, err)

	assert.Equal(t, []string{"/base/helpers", "/abs/helpers"}, opts.HelperDirs)
	assert.Equal(t, []string{}, opts.PartialDirs)
	assert.Equal(t, "", opts.BaseDir)
}
