// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carvel.dev/hbsmod/pkg/cmd/ui"
)

// OutputModule is a generated module waiting to be written, together with
// the template it was compiled from.
type OutputModule struct {
	sourcePath   string
	relativePath string
	data         []byte
}

func NewOutputModule(sourcePath, relativePath string, data []byte) OutputModule {
	return OutputModule{sourcePath, relativePath, data}
}

func (m OutputModule) SourcePath() string   { return m.sourcePath }
func (m OutputModule) RelativePath() string { return m.relativePath }
func (m OutputModule) Bytes() []byte        { return m.data }

func (m OutputModule) Path(dirPath string) string {
	return filepath.Join(dirPath, filepath.FromSlash(m.relativePath))
}

// WriteFile replaces path with data unless it already holds exactly data.
// Unchanged modules keep their modification time so that hosts caching on
// mtime do not reload them. It reports whether the file was written.
func WriteFile(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	err = os.MkdirAll(filepath.Dir(path), 0700)
	if err != nil {
		return false, err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.Write(data)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("Writing '%s': %s", path, err)
	}

	return true, os.Rename(tmpFile.Name(), path)
}

var unsafeOutputDirs = []string{"/", ".", "./", ""}

type OutputDirectory struct {
	path    string
	modules []OutputModule
	ui      ui.UI
}

func NewOutputDirectory(path string, modules []OutputModule, ui ui.UI) *OutputDirectory {
	return &OutputDirectory{path, modules, ui}
}

func (d *OutputDirectory) Modules() []OutputModule { return d.modules }

// Write places every module under the directory. Nothing is written when two
// templates map onto the same module path. Other files are left alone.
func (d *OutputDirectory) Write() error {
	for _, path := range unsafeOutputDirs {
		if d.path == path {
			return fmt.Errorf("Expected output directory path to not be one of '%s'",
				strings.Join(unsafeOutputDirs, "', '"))
		}
	}

	sources := map[string]string{}

	for _, module := range d.modules {
		if prev, found := sources[module.RelativePath()]; found {
			return fmt.Errorf("Expected templates '%s' and '%s' to compile to different modules, but both compile to '%s'",
				prev, module.SourcePath(), module.RelativePath())
		}
		sources[module.RelativePath()] = module.SourcePath()
	}

	for _, module := range d.modules {
		path := module.Path(d.path)

		written, err := WriteFile(path, module.Bytes())
		if err != nil {
			return err
		}
		if written {
			d.ui.Debugf("wrote %s (from %s)\n", path, module.SourcePath())
		} else {
			d.ui.Debugf("unchanged %s\n", path)
		}
	}

	return nil
}
