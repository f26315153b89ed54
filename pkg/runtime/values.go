// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"

	"carvel.dev/hbsmod/pkg/template"
	"github.com/k14s/starlark-go/starlark"
)

// Template is a compiled template held by a generated module.
type Template struct {
	name    string
	program *template.Program
}

var _ starlark.Value = &Template{}

func NewTemplate(name string, program *template.Program) *Template {
	return &Template{name: name, program: program}
}

func (t *Template) Program() *template.Program { return t.program }

func (t *Template) String() string        { return fmt.Sprintf("<hbsmod.template %s>", t.name) }
func (t *Template) Type() string          { return "hbsmod.template" }
func (t *Template) Freeze()               {}
func (t *Template) Truth() starlark.Bool  { return starlark.True }
func (t *Template) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: %s", t.Type()) }

// SafeString is output that must not be escaped again.
type SafeString string

var _ starlark.Value = SafeString("")

func (s SafeString) String() string        { return starlark.String(s).String() }
func (s SafeString) Type() string          { return "hbsmod.safe_string" }
func (s SafeString) Freeze()               {}
func (s SafeString) Truth() starlark.Bool  { return len(s) > 0 }
func (s SafeString) Hash() (uint32, error) { return starlark.String(s).Hash() }

// AsGoValue allows safe strings to flow through value conversions as strings.
func (s SafeString) AsGoValue() interface{} { return string(s) }
