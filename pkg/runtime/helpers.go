// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"carvel.dev/hbsmod/pkg/core"
	"carvel.dev/hbsmod/pkg/template"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

type builtinHelper func(r *renderer, params []starlark.Value, hash *starlark.Dict, f *frame, block *template.Node) (starlark.Value, error)

var builtinHelpers map[string]builtinHelper

func init() {
	builtinHelpers = map[string]builtinHelper{
		"if":     ifHelper,
		"unless": unlessHelper,
		"each":   eachHelper,
		"with":   withHelper,
		"lookup": lookupHelper,
		"log":    logHelper,
	}
}

func (r *renderer) helper(name string) (starlark.Value, bool) {
	val, found, err := r.helpers.Get(starlark.String(name))
	if err != nil || !found || val == starlark.None {
		return nil, false
	}
	return val, true
}

// call evaluates a helper call; registered helpers take precedence
// over built-ins of the same name.
func (r *renderer) call(expr *template.Expr, f *frame, block *template.Node) (starlark.Value, error) {
	name := expr.Name()

	params, err := r.values(expr.Params, f)
	if err != nil {
		return nil, err
	}
	hash, err := r.hash(expr.Hash, f)
	if err != nil {
		return nil, err
	}

	// block params are values; arguments given to them are ignored
	if block == nil && isBlockParamRef(expr.Path, f) {
		return r.lookup(expr.Path, f), nil
	}

	if helper, found := r.helper(name); found {
		return r.invoke(name, helper, params, hash, f, block)
	}
	if builtin, found := builtinHelpers[name]; found {
		return builtin(r, params, hash, f, block)
	}

	// {{user.fullName "x"}} calls a function found in the context
	if expr.Path != nil && !isHelperCandidate(expr.Path) {
		if fn, ok := r.lookup(expr.Path, f).(starlark.Callable); ok {
			return r.invoke(name, fn, params, hash, f, block)
		}
	}
	return nil, fmt.Errorf("Missing helper: %q", name)
}

func isBlockParamRef(path *template.Path, f *frame) bool {
	if path == nil || path.Data || path.Depth > 0 || path.Scoped || len(path.Parts) == 0 {
		return false
	}
	_, found := f.blockParam(path.Parts[0])
	return found
}

// invoke calls helper(*params, options). Functions declaring exactly
// len(params) positional parameters are called without options.
func (r *renderer) invoke(name string, helper starlark.Value, params []starlark.Value,
	hash *starlark.Dict, f *frame, block *template.Node) (starlark.Value, error) {

	fn, ok := helper.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("Expected helper %q to be callable, but was %s", name, helper.Type())
	}

	args := append(starlark.Tuple{}, params...)
	if wantsOptions(fn, len(params)) {
		args = append(args, r.options(name, hash, f, block))
	}

	result, err := starlark.Call(r.thread, fn, args, nil)
	if err != nil {
		return nil, fmt.Errorf("Calling helper %q: %s", name, err)
	}
	return result, nil
}

func wantsOptions(fn starlark.Callable, numParams int) bool {
	starFn, ok := fn.(*starlark.Function)
	if !ok || starFn.HasVarargs() {
		return true
	}
	declared := starFn.NumParams()
	if starFn.HasKwargs() {
		declared--
	}
	return declared != numParams
}

// options is the last argument of helper calls:
//
//	options.name      helper name
//	options.hash      dict of hash arguments
//	options.data      dict of visible @data variables
//	options.context   current context (this)
//	options.fn        renders the block body
//	options.inverse   renders the else branch
func (r *renderer) options(name string, hash *starlark.Dict, f *frame, block *template.Node) starlark.Value {
	var prog, inverse *template.Program
	if block != nil {
		prog, inverse = block.Program, block.Inverse
	}

	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"name":    starlark.String(name),
		"hash":    hash,
		"data":    f.dataDict(),
		"context": f.ctx,
		"fn":      starlark.NewBuiltin("options.fn", core.ErrWrapper(r.blockFunc(prog, f))),
		"inverse": starlark.NewBuiltin("options.inverse", core.ErrWrapper(r.blockFunc(inverse, f))),
	})
}

// blockFunc renders prog as fn([context], data=None, block_params=None).
func (r *renderer) blockFunc(prog *template.Program, f *frame) core.StarlarkFunc {
	return func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if args.Len() > 1 {
			return starlark.None, fmt.Errorf("expected at most one argument")
		}
		allowedKWArgs := map[string]struct{}{
			"data":         {},
			"block_params": {},
		}
		if err := core.CheckArgNames(kwargs, allowedKWArgs); err != nil {
			return starlark.None, err
		}

		ctx, pushesCtx := f.ctx, false
		if args.Len() == 1 {
			ctx = args.Index(0)
			pushesCtx = !sameValue(ctx, f.ctx)
		}

		named, err := core.KwargsAsDict(kwargs)
		if err != nil {
			return starlark.None, err
		}

		var data map[string]starlark.Value
		var blockParams []starlark.Value

		if val, found, _ := named.Get(starlark.String("data")); found {
			dict, err := core.NewStarlarkValue(val).AsDict()
			if err != nil {
				return starlark.None, fmt.Errorf("data: %s", err)
			}
			data = map[string]starlark.Value{}
			for _, item := range dict.Items() {
				if key, ok := item.Index(0).(starlark.String); ok {
					data[string(key)] = item.Index(1)
				}
			}
		}

		if val, found, _ := named.Get(starlark.String("block_params")); found {
			iterable, ok := val.(starlark.Iterable)
			if !ok {
				return starlark.None, fmt.Errorf("block_params: expected list, but was %s", val.Type())
			}
			iter := iterable.Iterate()
			var x starlark.Value
			for iter.Next(&x) {
				blockParams = append(blockParams, x)
			}
			iter.Done()
		}

		out, err := r.fn(prog, f, ctx, pushesCtx, data, bindBlockParams(blockParamNames(prog), blockParams...))
		if err != nil {
			return starlark.None, err
		}
		return starlark.String(out), nil
	}
}

func sameValue(a, b starlark.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	eq, err := starlark.Equal(a, b)
	return err == nil && eq
}

func requireBlock(name string, block *template.Node) error {
	if block == nil {
		return fmt.Errorf("#%s can only be used as a block", name)
	}
	return nil
}

func includeZero(hash *starlark.Dict) bool {
	val, found, err := hash.Get(starlark.String("includeZero"))
	return err == nil && found && bool(val.Truth())
}

func ifHelper(r *renderer, params []starlark.Value, hash *starlark.Dict, f *frame, block *template.Node) (starlark.Value, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("#if requires exactly one argument")
	}
	if err := requireBlock("if", block); err != nil {
		return nil, err
	}

	prog := block.Program
	if IsEmpty(params[0], includeZero(hash)) {
		prog = block.Inverse
	}
	out, err := r.fn(prog, f, f.ctx, false, nil, nil)
	return starlark.String(out), err
}

func unlessHelper(r *renderer, params []starlark.Value, hash *starlark.Dict, f *frame, block *template.Node) (starlark.Value, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("#unless requires exactly one argument")
	}
	if err := requireBlock("unless", block); err != nil {
		return nil, err
	}

	prog := block.Inverse
	if IsEmpty(params[0], includeZero(hash)) {
		prog = block.Program
	}
	out, err := r.fn(prog, f, f.ctx, false, nil, nil)
	return starlark.String(out), err
}

func eachHelper(r *renderer, params []starlark.Value, _ *starlark.Dict, f *frame, block *template.Node) (starlark.Value, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("Must pass iterator to #each")
	}
	if err := requireBlock("each", block); err != nil {
		return nil, err
	}
	return r.iterate(params[0], block, f)
}

func withHelper(r *renderer, params []starlark.Value, _ *starlark.Dict, f *frame, block *template.Node) (starlark.Value, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("#with requires exactly one argument")
	}
	if err := requireBlock("with", block); err != nil {
		return nil, err
	}

	val := params[0]
	if IsEmpty(val, false) {
		out, err := r.fn(block.Inverse, f, f.ctx, false, nil, nil)
		return starlark.String(out), err
	}
	out, err := r.fn(block.Program, f, val, true, nil, bindBlockParams(blockParamNames(block.Program), val))
	return starlark.String(out), err
}

func lookupHelper(_ *renderer, params []starlark.Value, _ *starlark.Dict, _ *frame, _ *template.Node) (starlark.Value, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("lookup requires exactly two arguments")
	}
	return property(params[0], Stringify(params[1])), nil
}

// logHelper prints its arguments on the thread's print channel. Strings
// print as is, other values as JSON.
func logHelper(r *renderer, params []starlark.Value, _ *starlark.Dict, _ *frame, _ *template.Node) (starlark.Value, error) {
	var parts []string
	for _, param := range params {
		part, err := logString(param)
		if err != nil {
			return nil, fmt.Errorf("log: %s", err)
		}
		parts = append(parts, part)
	}
	if r.thread != nil && r.thread.Print != nil {
		r.thread.Print(r.thread, strings.Join(parts, " "))
	}
	return starlark.None, nil
}

func logString(val starlark.Value) (string, error) {
	goVal, err := core.NewStarlarkValue(val).AsGoValue()
	if err != nil {
		return Stringify(val), nil
	}
	if str, ok := goVal.(string); ok {
		return str, nil
	}
	bs, err := json.Marshal(goVal)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}
