// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Source interface {
	Description() string
	RelativePath() (string, error)
	Bytes() ([]byte, error)
}

var _ []Source = []Source{BytesSource{}, StdinSource{}, LocalSource{}}

type BytesSource struct {
	path string
	data []byte
}

func NewBytesSource(path string, data []byte) BytesSource { return BytesSource{path, data} }

func (s BytesSource) Description() string           { return s.path }
func (s BytesSource) RelativePath() (string, error) { return s.path, nil }
func (s BytesSource) Bytes() ([]byte, error)        { return s.data, nil }

type StdinSource struct {
	bytes []byte
	err   error
}

var stdinConsumed bool

// NewStdinSource consumes stdin; a second call fails since stdin
// can only be read once per process.
func NewStdinSource() StdinSource {
	if stdinConsumed {
		return StdinSource{nil, fmt.Errorf("Expected '-' (stdin) to be given at most once")}
	}
	stdinConsumed = true

	bs, err := io.ReadAll(os.Stdin)
	return StdinSource{bs, err}
}

func (s StdinSource) Description() string           { return "stdin.hbs" }
func (s StdinSource) RelativePath() (string, error) { return "stdin.hbs", nil }
func (s StdinSource) Bytes() ([]byte, error)        { return s.bytes, s.err }

// LocalSource is a file on disk. Its relative path is taken against dir,
// the directory given on the command line, so that "-R" keeps the tree
// shape in the output directory.
type LocalSource struct {
	path string
	dir  string
}

func NewLocalSource(path, dir string) LocalSource { return LocalSource{path, dir} }

func (s LocalSource) Description() string { return fmt.Sprintf("file '%s'", s.path) }

func (s LocalSource) RelativePath() (string, error) {
	if s.dir == "" {
		return filepath.Base(s.path), nil
	}

	absPath, err := filepath.Abs(s.path)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("Expected file '%s' to be within directory '%s'", s.path, s.dir)
	}
	return filepath.ToSlash(rel), nil
}

func (s LocalSource) Bytes() ([]byte, error) { return os.ReadFile(s.path) }
