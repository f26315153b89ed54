// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carvel.dev/hbsmod/pkg/cmd/ui"
	"carvel.dev/hbsmod/pkg/compiler"
	"carvel.dev/hbsmod/pkg/config"
	"carvel.dev/hbsmod/pkg/files"
	"carvel.dev/hbsmod/pkg/resolve"
	"carvel.dev/hbsmod/pkg/runtime"
	"github.com/k14s/starlark-go/starlark"
)

const (
	moduleDirLocal = "hbsmod.module_dir"
)

type ModuleLoaderOpts struct {
	Options config.Options

	// ModuleDirs are searched for bare specifiers
	ModuleDirs []string

	// Stubs replace modules by specifier before any lookup
	Stubs map[string]starlark.StringDict

	DirChecker config.DirChecker
	FS         resolve.FileSystem
	UI         ui.UI
}

// ModuleLoader is not safe for concurrent use; threads it creates
// must be run one at a time.
type ModuleLoader struct {
	opts     ModuleLoaderOpts
	cfg      config.Config
	compiler *compiler.Compiler
	ui       ui.UI

	modules map[string]*loadedModule
	stack   []string
	loaded  []string
}

type loadedModule struct {
	globals starlark.StringDict
	err     error
	done    bool
}

func NewModuleLoader(opts ModuleLoaderOpts) (*ModuleLoader, error) {
	cfg, err := config.Resolve(opts.Options, opts.DirChecker)
	if err != nil {
		return nil, compiler.NewConfigError(err)
	}

	if opts.UI == nil {
		opts.UI = ui.NewNoopUI()
	}

	return &ModuleLoader{
		opts:     opts,
		cfg:      cfg,
		compiler: compiler.NewCompiler(cfg, opts.FS, opts.UI),
		ui:       opts.UI,
		modules:  map[string]*loadedModule{},
	}, nil
}

func (l *ModuleLoader) Config() config.Config { return l.cfg }

// Loaded returns every specifier requested through Load, in request order.
func (l *ModuleLoader) Loaded() []string {
	return append([]string{}, l.loaded...)
}

// NewThread returns a thread whose load statements resolve relative
// to dir.
func (l *ModuleLoader) NewThread(name, dir string) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Load: l.Load,
		Print: func(_ *starlark.Thread, msg string) {
			l.ui.Debugf("%s\n", msg)
		},
	}
	thread.SetLocal(moduleDirLocal, dir)
	return thread
}

func (l *ModuleLoader) Load(thread *starlark.Thread, module string) (starlark.StringDict, error) {
	l.loaded = append(l.loaded, module)

	if module == l.cfg.Runtime() || module == config.DefaultRuntime {
		return runtime.API, nil
	}

	if stub, found := l.opts.Stubs[module]; found {
		return stub, nil
	}

	path, err := l.find(l.moduleDir(thread), module)
	if err != nil {
		return nil, err
	}

	return l.LoadFile(path)
}

// LoadFile evaluates the module at path once; later calls return
// the cached result.
func (l *ModuleLoader) LoadFile(path string) (starlark.StringDict, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if mod, found := l.modules[path]; found {
		if !mod.done {
			return nil, fmt.Errorf("Detected load cycle: %s -> %s", strings.Join(l.stack, " -> "), path)
		}
		return mod.globals, mod.err
	}

	mod := &loadedModule{}
	l.modules[path] = mod

	l.stack = append(l.stack, path)
	mod.globals, mod.err = l.evalFile(path)
	l.stack = l.stack[:len(l.stack)-1]
	mod.done = true

	return mod.globals, mod.err
}

func (l *ModuleLoader) evalFile(path string) (starlark.StringDict, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Reading module '%s': %s", path, err)
	}

	var src string

	switch files.TypeForPath(path, l.cfg.Extensions()) {
	case files.TypeTemplate:
		l.ui.Debugf("compiling: %s\n", path)

		src, err = l.compiler.Compile(path, string(bs))
		if err != nil {
			return nil, err
		}

	case files.TypeStarlark:
		src = string(bs)

	default:
		return nil, fmt.Errorf("Module '%s' is neither a template nor a Starlark file", path)
	}

	thread := l.NewThread("module="+path, filepath.Dir(path))

	return EvalModule(thread, path, src)
}

func (l *ModuleLoader) find(dir, module string) (string, error) {
	var searchDirs []string

	switch {
	case filepath.IsAbs(module):
		searchDirs = []string{""}
	case resolve.IsExplicitPath(module):
		searchDirs = []string{dir}
	default:
		searchDirs = l.opts.ModuleDirs
	}

	for _, searchDir := range searchDirs {
		for _, candidate := range l.candidates(filepath.FromSlash(module)) {
			path := candidate
			if len(searchDir) > 0 {
				path = filepath.Join(searchDir, candidate)
			}
			if l.isFile(path) {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("Expected to find module '%s' (searched: %s)", module, strings.Join(searchDirs, ", "))
}

func (l *ModuleLoader) candidates(path string) []string {
	result := []string{path, path + resolve.HelperExtension}
	for _, ext := range l.cfg.Extensions() {
		result = append(result, path+ext)
	}
	return result
}

func (l *ModuleLoader) isFile(path string) bool {
	fs := l.opts.FS
	if fs == nil {
		fs = resolve.OSFileSystem{}
	}
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (l *ModuleLoader) moduleDir(thread *starlark.Thread) string {
	if thread != nil {
		if dir, ok := thread.Local(moduleDirLocal).(string); ok {
			return dir
		}
	}
	wd, _ := os.Getwd()
	return wd
}
