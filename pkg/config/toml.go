// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultOptionsFile = "hbsmod.toml"
)

// NewOptionsFromTOML decodes an options file such as:
//
//	helperDirs = ["helpers"]
//	runtime = "@hbsmod:runtime"
//	inlineRequires = false
func NewOptionsFromTOML(data []byte) (Options, error) {
	var raw map[string]interface{}

	_, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Options{}, fmt.Errorf("Unmarshaling TOML options: %s", err)
	}

	return NewOptionsFromMap(raw), nil
}

// NewOptionsFromTOMLFile reads path and anchors relative directories
// found in it at the file's own directory.
func NewOptionsFromTOMLFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("Reading options file '%s': %s", path, err)
	}

	opts, err := NewOptionsFromTOML(data)
	if err != nil {
		return Options{}, fmt.Errorf("Options file '%s': %s", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Options{}, err
	}
	opts.BaseDir = filepath.Dir(absPath)

	return opts, nil
}
