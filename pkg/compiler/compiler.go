// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"

	"carvel.dev/hbsmod/pkg/cmd/ui"
	"carvel.dev/hbsmod/pkg/config"
	"carvel.dev/hbsmod/pkg/emit"
	"carvel.dev/hbsmod/pkg/resolve"
	"carvel.dev/hbsmod/pkg/scan"
	"carvel.dev/hbsmod/pkg/template"
	"github.com/aymerick/raymond/parser"
)

// Compiler holds no mutable state and may be shared by goroutines.
type Compiler struct {
	cfg      config.Config
	rewriter *resolve.Rewriter
	ui       ui.UI
}

func NewCompiler(cfg config.Config, fs resolve.FileSystem, ui ui.UI) *Compiler {
	if fs == nil {
		fs = resolve.OSFileSystem{}
	}
	return &Compiler{
		cfg:      cfg,
		rewriter: resolve.NewRewriter(cfg, fs),
		ui:       ui,
	}
}

func (c *Compiler) Config() config.Config { return c.cfg }

// Compile returns the module text for source. name identifies the
// template in messages and in the generated header.
func (c *Compiler) Compile(name, source string) (string, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return "", newParseError(name, err)
	}

	refs := scan.Scan(program)
	for _, skipped := range refs.Skipped {
		skipped.Position = skipped.Position.InFile(name)
		c.ui.Debugf("%s: skipping %s\n", name, skipped.String())
	}

	edges := c.rewriter.RewriteAll(refs)
	for _, edge := range edges {
		c.ui.Debugf("%s: %s\n", name, edge.String())
	}

	payload := source

	if c.cfg.InlineRequires() {
		lowered, err := template.Lower(program)
		if err != nil {
			return "", fmt.Errorf("Compiling template '%s': %s", name, err)
		}
		payload, err = template.Marshal(lowered)
		if err != nil {
			return "", fmt.Errorf("Compiling template '%s': %s", name, err)
		}
	}

	return emit.Emit(emit.Module{
		Name:    name,
		Runtime: c.cfg.Runtime(),
		Edges:   edges,
		Payload: payload,
		Inline:  c.cfg.InlineRequires(),
	}), nil
}
