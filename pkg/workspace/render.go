// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"path/filepath"

	"carvel.dev/hbsmod/pkg/emit"
	"github.com/k14s/starlark-go/starlark"
)

// RenderFile loads the template module at path and calls its render
// function with data and options (either may be None).
func (l *ModuleLoader) RenderFile(path string, data, options starlark.Value) (string, error) {
	globals, err := l.LoadFile(path)
	if err != nil {
		return "", err
	}

	renderVal, found := globals[emit.PartialExport]
	if !found {
		return "", fmt.Errorf("Expected module '%s' to export '%s'", path, emit.PartialExport)
	}

	renderFunc, ok := renderVal.(starlark.Callable)
	if !ok {
		return "", fmt.Errorf("Expected '%s' in module '%s' to be a function, but was %s",
			emit.PartialExport, path, renderVal.Type())
	}

	if data == nil {
		data = starlark.None
	}
	if options == nil {
		options = starlark.None
	}

	thread := l.NewThread("render="+path, filepath.Dir(path))

	result, err := starlark.Call(thread, renderFunc, starlark.Tuple{data, options}, nil)
	if err != nil {
		return "", fmt.Errorf("Rendering '%s': %s", path, errMessage(err))
	}

	str, ok := result.(starlark.String)
	if !ok {
		return "", fmt.Errorf("Expected rendering '%s' to return a string, but was %s", path, result.Type())
	}

	return string(str), nil
}
