// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	DefaultTemplateExts = []string{".hbs", ".handlebars"}

	starlarkExts = []string{".star"}
	dataExts     = []string{".yaml", ".yml", ".json"}
)

type Type int

const (
	TypeUnknown Type = iota
	TypeTemplate
	TypeStarlark
	TypeData
)

func (t Type) String() string {
	switch t {
	case TypeTemplate:
		return "template"
	case TypeStarlark:
		return "starlark"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}

// TypeForPath classifies path by extension. templateExts defaults to
// DefaultTemplateExts when empty.
func TypeForPath(path string, templateExts []string) Type {
	if len(templateExts) == 0 {
		templateExts = DefaultTemplateExts
	}
	filename := filepath.Base(path)
	switch {
	case matchesExt(filename, templateExts):
		return TypeTemplate
	case matchesExt(filename, starlarkExts):
		return TypeStarlark
	case matchesExt(filename, dataExts):
		return TypeData
	default:
		return TypeUnknown
	}
}

type File struct {
	src     Source
	relPath string
}

// NewFiles enumerates paths. Directories are walked (when recursive)
// and only contribute files of a known Type; "-" reads stdin.
func NewFiles(paths []string, recursive bool, templateExts []string) ([]*File, error) {
	var fileSrcs []Source

	for _, path := range paths {
		if path == "-" {
			fileSrcs = append(fileSrcs, NewStdinSource())
			continue
		}

		fileInfo, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("Checking file '%s': %s", path, err)
		}

		if !fileInfo.IsDir() {
			fileSrcs = append(fileSrcs, NewLocalSource(path, ""))
			continue
		}

		if !recursive {
			return nil, fmt.Errorf("Expected file '%s' to not be a directory", path)
		}

		var selectedPaths []string

		err = filepath.Walk(path, func(walkedPath string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return err
			}
			if TypeForPath(walkedPath, templateExts) == TypeTemplate {
				selectedPaths = append(selectedPaths, walkedPath)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("Listing files '%s': %s", path, err)
		}

		sort.Strings(selectedPaths)

		for _, selectedPath := range selectedPaths {
			fileSrcs = append(fileSrcs, NewLocalSource(selectedPath, path))
		}
	}

	var files []*File

	for _, fileSrc := range fileSrcs {
		file, err := NewFileFromSource(fileSrc)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func MustNewFileFromSource(fileSrc Source) *File {
	file, err := NewFileFromSource(fileSrc)
	if err != nil {
		panic(err)
	}
	return file
}

func (r *File) Description() string    { return r.src.Description() }
func (r *File) RelativePath() string   { return r.relPath }
func (r *File) Bytes() ([]byte, error) { return r.src.Bytes() }

// Dir is the directory relative references in the file resolve against.
func (r *File) Dir() string {
	if local, ok := r.src.(LocalSource); ok {
		abs, err := filepath.Abs(local.path)
		if err == nil {
			return filepath.Dir(abs)
		}
	}
	wd, _ := os.Getwd()
	return wd
}

func (r *File) Type(templateExts []string) Type {
	return TypeForPath(r.relPath, templateExts)
}

// ModulePath is where the compiled module of a template file is written:
// the template extension is replaced with .star.
func (r *File) ModulePath(templateExts []string) string {
	if len(templateExts) == 0 {
		templateExts = DefaultTemplateExts
	}
	for _, ext := range templateExts {
		if strings.HasSuffix(r.relPath, ext) {
			return strings.TrimSuffix(r.relPath, ext) + starlarkExts[0]
		}
	}
	return r.relPath + starlarkExts[0]
}

func matchesExt(filename string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
