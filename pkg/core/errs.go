// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/k14s/starlark-go/starlark"
)

type StarlarkFunc func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// ErrWrapper prefixes errors of a Go-backed builtin with its name and
// turns panics into errors carrying the Go stack.
func ErrWrapper(wrappedFunc StarlarkFunc) StarlarkFunc {
	return func(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (val starlark.Value, resultErr error) {
		defer func() {
			if err := recover(); err != nil {
				val = starlark.None
				resultErr = fmt.Errorf("%s: unexpected panic: %v\n%s", f.Name(), err, debug.Stack())
			}
		}()

		val, err := wrappedFunc(thread, f, args, kwargs)
		if err != nil {
			if strings.HasPrefix(err.Error(), f.Name()+":") {
				return starlark.None, err
			}
			return starlark.None, fmt.Errorf("%s: %s", f.Name(), err)
		}

		return val, nil
	}
}
