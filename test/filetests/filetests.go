// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filetests houses a test harness for compiling templates and asserting
the expected generated module, rendered output or error.
*/
package filetests

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"carvel.dev/hbsmod/pkg/version"
	"github.com/k14s/difflib"
	"golang.org/x/tools/txtar"
)

const (
	// DirPlaceholder is replaced with the directory a case's files are extracted to
	DirPlaceholder = "$DIR"

	TemplateSection = "template.hbs"
	OptionsSection  = "options"
	DataSection     = "data.yml"
	ModuleSection   = "module.star"
	OutputSection   = "output"
	ErrorSection    = "error"
)

var expectationSections = []string{ModuleSection, OutputSection}

// Case is a single test archive extracted to Dir.
type Case struct {
	Name     string
	Dir      string
	Comment  string
	Sections map[string]string
}

func (c Case) Section(name string) (string, bool) {
	val, found := c.Sections[name]
	return val, found
}

// EvaluateCase produces sections (keyed like ModuleSection) to compare
// against the archive's expectations.
type EvaluateCase func(c Case) (map[string]string, *TestErr)

// FileTests contain a suite of test cases, each described in a separate txtar archive.
//
// Test cases:
// - are found within the directory at "PathToTests" and have a .txtar extension
// - have a template.hbs section, and optionally options (a query string) and data.yml
// - every other file in the archive is written next to template.hbs (helpers, partials)
// - expectations are given by module.star and output sections, or an error section
//
// $DIR in options and expectations is replaced with the case directory.
//
// For example:
//
//	-- template.hbs --
//	<h1>{{title}}</h1>
//	-- data.yml --
//	title: hello
//	-- output --
//	<h1>hello</h1>
type FileTests struct {
	PathToTests string
	EvalFunc    EvaluateCase
}

// Run enumerates each archive within FileTests.PathToTests, extracts it
// and evaluates it using FileTests.EvalFunc.
func (f FileTests) Run(t *testing.T) {
	var archives []string
	version.Version = "0.0.0"

	err := filepath.Walk(f.PathToTests, func(walkedPath string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		if strings.HasSuffix(walkedPath, ".txtar") {
			archives = append(archives, walkedPath)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to enumerate filetests: %s", err)
	}
	if len(archives) == 0 {
		t.Fatalf("Expected to find filetests in %s", f.PathToTests)
	}

	sort.Strings(archives)

	for _, archivePath := range archives {
		t.Run(filepath.Base(archivePath), func(t *testing.T) {
			c, err := extract(archivePath, t.TempDir())
			if err != nil {
				t.Fatal(err)
			}

			if _, found := c.Section(TemplateSection); !found {
				t.Fatalf("expected archive %s to include %s", archivePath, TemplateSection)
			}

			result, testErr := f.EvalFunc(c)

			if expectedErr, found := c.Section(ErrorSection); found {
				if testErr == nil {
					t.Fatalf("expected eval error, but did not receive it")
				}
				err = expectEquals(ErrorSection, TrimTrailingMultilineWhitespace(testErr.UserErr().Error()),
					TrimTrailingMultilineWhitespace(c.expand(expectedErr)))
				if err != nil {
					t.Fatalf("%s", err)
				}
				return
			}

			if testErr != nil {
				t.Fatalf("%s", testErr.TestErr())
			}

			for _, section := range expectationSections {
				expected, found := c.Section(section)
				if !found {
					continue
				}
				err = expectEquals(section, result[section], c.expand(expected))
				if err != nil {
					t.Fatalf("%s", err)
				}
			}
		})
	}
}

func extract(archivePath, dir string) (Case, error) {
	archive, err := txtar.ParseFile(archivePath)
	if err != nil {
		return Case{}, fmt.Errorf("Parsing archive %s: %s", archivePath, err)
	}

	c := Case{
		Name:     filepath.Base(archivePath),
		Dir:      dir,
		Comment:  string(archive.Comment),
		Sections: map[string]string{},
	}

	for _, file := range archive.Files {
		if _, dup := c.Sections[file.Name]; dup {
			return Case{}, fmt.Errorf("Archive %s contains %s more than once", archivePath, file.Name)
		}
		c.Sections[file.Name] = string(file.Data)

		switch file.Name {
		case OptionsSection, ModuleSection, OutputSection, ErrorSection:
			continue
		}

		path := filepath.Join(dir, filepath.FromSlash(file.Name))

		err := os.MkdirAll(filepath.Dir(path), 0700)
		if err != nil {
			return Case{}, err
		}
		err = os.WriteFile(path, file.Data, 0600)
		if err != nil {
			return Case{}, err
		}
	}

	return c, nil
}

// Options returns the options section with $DIR expanded and
// surrounding whitespace trimmed.
func (c Case) Options() string {
	return strings.TrimSpace(c.expand(c.Sections[OptionsSection]))
}

func (c Case) expand(s string) string {
	return strings.ReplaceAll(s, DirPlaceholder, filepath.ToSlash(c.Dir))
}

// TestErr captures an error result from a single test.
type TestErr struct {
	realErr error
	testErr error
}

// NewTestErr creates a new TestErr
func NewTestErr(realErr, testErr error) *TestErr {
	return &TestErr{realErr, testErr}
}

// UserErr yields the error returned to the user
func (e TestErr) UserErr() error { return e.realErr }

// TestErr yields the error wrapped with helpful test context
func (e TestErr) TestErr() error { return e.testErr }

func expectEquals(section, resultStr, expectedStr string) error {
	if resultStr != expectedStr {
		diff := difflib.PPDiff(strings.Split(expectedStr, "\n"), strings.Split(resultStr, "\n"))
		return fmt.Errorf("%s not equal\n\n### result %d chars:\n>>>%s<<<\n###expected %d chars:\n>>>%s<<<\n### diff:\n%s",
			section, len(resultStr), resultStr, len(expectedStr), expectedStr, diff)
	}
	return nil
}

// TrimTrailingMultilineWhitespace returns a string with trailing whitespace trimmed from every line as well
// as trimmed trailing empty lines
func TrimTrailingMultilineWhitespace(s string) string {
	var trimmedLines []string
	for _, line := range strings.Split(s, "\n") {
		trimmedLine := strings.TrimRight(line, "\t ")
		trimmedLines = append(trimmedLines, trimmedLine)
	}
	multiline := strings.Join(trimmedLines, "\n")
	return strings.TrimRight(multiline, "\n")
}
