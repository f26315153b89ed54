// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"strings"

	"github.com/k14s/starlark-go/resolve"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/syntax"
)

func init() {
	resolve.AllowFloat = true
	resolve.AllowSet = true
	resolve.AllowLambda = true
	resolve.AllowNestedDef = true
	resolve.AllowBitwise = true
	resolve.AllowRecursion = true
	resolve.AllowGlobalReassign = true
}

// EvalModule executes src as a Starlark module and returns its exported
// (non underscore) globals, frozen.
func EvalModule(thread *starlark.Thread, name, src string) (starlark.StringDict, error) {
	globals, err := evalModule(thread, name, src)
	if err != nil {
		return nil, fmt.Errorf("Evaluating module '%s': %s", name, errMessage(err))
	}

	hidePrivateGlobals(globals)

	return globals, nil
}

func evalModule(thread *starlark.Thread, name, src string) (gs starlark.StringDict, resultErr error) {
	defer func() {
		if err := recover(); err != nil {
			if typedErr, ok := err.(error); ok {
				resultErr = typedErr
			} else {
				resultErr = fmt.Errorf("(p) %s", err)
			}
		}
	}()

	f, err := syntax.Parse(name, src, 0)
	if err != nil {
		return nil, err
	}

	predeclared := starlark.StringDict{}

	prog, err := starlark.FileProgram(f, predeclared.Has)
	if err != nil {
		return nil, err
	}

	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		return nil, err
	}

	globals.Freeze()

	return globals, nil
}

func hidePrivateGlobals(globals starlark.StringDict) {
	var privateKeys []string

	for k := range globals {
		if strings.HasPrefix(k, "_") {
			privateKeys = append(privateKeys, k)
		}
	}

	for _, k := range privateKeys {
		delete(globals, k)
	}
}

func errMessage(err error) string {
	if evalErr, ok := err.(*starlark.EvalError); ok {
		return evalErr.Backtrace()
	}
	return err.Error()
}
