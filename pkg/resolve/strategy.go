// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"carvel.dev/hbsmod/pkg/scan"
)

const (
	HelperExtension = ".star"
)

type Ref struct {
	Namespace scan.Namespace
	Name      string
}

// Strategy returns a specifier for ref, or false when it does not apply.
type Strategy interface {
	Resolve(ref Ref) (string, bool)
}

// Pipeline tries strategies in order, first match wins.
type Pipeline []Strategy

func (p Pipeline) Resolve(ref Ref) (string, bool) {
	for _, strategy := range p {
		if spec, ok := strategy.Resolve(ref); ok {
			return spec, true
		}
	}
	return "", false
}

type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

type OSFileSystem struct{}

func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// IsExplicitPath reports whether name is written as a path rather than a
// bare module name.
func IsExplicitPath(name string) bool {
	return strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".")
}

type ExplicitPathStrategy struct{}

func (ExplicitPathStrategy) Resolve(ref Ref) (string, bool) {
	if IsExplicitPath(ref.Name) {
		return ref.Name, true
	}
	return "", false
}

type SearchDirsStrategy struct {
	HelperDirs  []string
	PartialDirs []string

	HelperExtensions  []string
	PartialExtensions []string

	FS FileSystem
}

func (s SearchDirsStrategy) Resolve(ref Ref) (string, bool) {
	dirs, exts := s.HelperDirs, s.HelperExtensions
	if ref.Namespace == scan.PartialNamespace {
		dirs, exts = s.PartialDirs, s.PartialExtensions
	}

	candidates := candidateNames(ref.Name, exts)

	for _, dir := range dirs {
		for _, name := range candidates {
			path := filepath.Join(dir, name)
			if s.isFile(path) {
				return filepath.ToSlash(path), true
			}
		}
	}
	return "", false
}

func (s SearchDirsStrategy) isFile(path string) bool {
	fsys := s.FS
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// candidateNames lists name with each extension appended, preceded by
// name itself when it already carries one of them.
func candidateNames(name string, exts []string) []string {
	var result []string
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			result = append(result, name)
			break
		}
	}
	for _, ext := range exts {
		result = append(result, name+ext)
	}
	return result
}

type BareNameStrategy struct{}

func (BareNameStrategy) Resolve(ref Ref) (string, bool) {
	return ref.Name, len(ref.Name) > 0
}
