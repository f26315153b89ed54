// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultRuntime = "@hbsmod:runtime"
)

var (
	DefaultExtensions = []string{".hbs", ".handlebars"}
)

// Options is a partially specified set of compile options.
// Nil fields are unset and take their default at Resolve time.
type Options struct {
	HelperDirs     []string
	PartialDirs    []string
	Runtime        *string
	InlineRequires *bool
	Extensions     []string
	KnownHelpers   []string
	IgnoreHelpers  *bool
	IgnorePartials *bool
	Debug          *bool

	// BaseDir anchors relative directories. Defaults to the working directory.
	BaseDir string
}

// Merge returns a copy of o overridden by every field that other sets.
func (o Options) Merge(other Options) Options {
	result := o
	if other.HelperDirs != nil {
		result.HelperDirs = copyStrings(other.HelperDirs)
	}
	if other.PartialDirs != nil {
		result.PartialDirs = copyStrings(other.PartialDirs)
	}
	if other.Runtime != nil {
		result.Runtime = other.Runtime
	}
	if other.InlineRequires != nil {
		result.InlineRequires = other.InlineRequires
	}
	if other.Extensions != nil {
		result.Extensions = copyStrings(other.Extensions)
	}
	if other.KnownHelpers != nil {
		result.KnownHelpers = copyStrings(other.KnownHelpers)
	}
	if other.IgnoreHelpers != nil {
		result.IgnoreHelpers = other.IgnoreHelpers
	}
	if other.IgnorePartials != nil {
		result.IgnorePartials = other.IgnorePartials
	}
	if other.Debug != nil {
		result.Debug = other.Debug
	}
	if len(other.BaseDir) > 0 {
		result.BaseDir = other.BaseDir
	}
	return result
}

// ParseBool accepts the boolean spellings used in loader queries.
// An empty value means the flag is present without a value and is true.
func ParseBool(val string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "", "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func boolPtr(val bool) *bool       { return &val }
func stringPtr(val string) *string { return &val }

func copyStrings(vals []string) []string {
	if vals == nil {
		return nil
	}
	return append([]string{}, vals...)
}

// WithAbsDirs anchors relative directories at BaseDir (or the working
// directory) so that options from different sources can be merged.
func (o Options) WithAbsDirs() (Options, error) {
	baseDir := o.BaseDir
	if len(baseDir) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return Options{}, fmt.Errorf("Determining working directory: %s", err)
		}
		baseDir = wd
	}

	result := o
	result.HelperDirs = absDirs(o.HelperDirs, baseDir)
	result.PartialDirs = absDirs(o.PartialDirs, baseDir)
	result.BaseDir = ""
	return result, nil
}

func absDirs(dirs []string, baseDir string) []string {
	if dirs == nil {
		return nil
	}
	result := []string{}
	for _, dir := range dirs {
		if len(dir) > 0 && !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		result = append(result, dir)
	}
	return result
}
