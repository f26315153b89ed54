// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package loader adapts the template compiler to build systems that drive
compilation one source at a time and receive the result through a callback.
*/
package loader

import (
	"carvel.dev/hbsmod/pkg/cmd/ui"
	"carvel.dev/hbsmod/pkg/compiler"
	"carvel.dev/hbsmod/pkg/config"
	"carvel.dev/hbsmod/pkg/resolve"
)

// Context is provided by the host for a single compilation.
type Context interface {
	// Query returns raw options in query-string form (may be empty)
	Query() string
	// ResolveDir reports an error when path is not an existing directory
	ResolveDir(path string) error
	// Callback receives the result; it is called exactly once
	Callback(moduleText string, err error)
}

// NamedContext is optionally implemented by hosts that know the
// template's name.
type NamedContext interface {
	ResourcePath() string
}

type Opts struct {
	FS resolve.FileSystem
	UI ui.UI
}

func Run(ctx Context, source string) {
	RunWithOpts(ctx, source, Opts{})
}

func RunWithOpts(ctx Context, source string, opts Opts) {
	moduleText, err := compile(ctx, source, opts)
	if err != nil {
		ctx.Callback("", err)
		return
	}
	ctx.Callback(moduleText, nil)
}

func compile(ctx Context, source string, opts Opts) (string, error) {
	options, err := config.NewOptionsFromQuery(ctx.Query())
	if err != nil {
		return "", compiler.NewConfigError(err)
	}

	cfg, err := config.Resolve(options, config.DirCheckerFunc(ctx.ResolveDir))
	if err != nil {
		return "", compiler.NewConfigError(err)
	}

	logger := opts.UI
	if logger == nil {
		logger = ui.NewNoopUI()
		if cfg.Debug() {
			logger = ui.NewTTY(true)
		}
	}

	name := "template"
	if named, ok := ctx.(NamedContext); ok && len(named.ResourcePath()) > 0 {
		name = named.ResourcePath()
	}

	return compiler.NewCompiler(cfg, opts.FS, logger).Compile(name, source)
}
