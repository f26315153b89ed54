// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"sort"

	"github.com/k14s/starlark-go/starlark"
)

// frame is one level of block nesting. Frames that switch the context
// (each item, with, explicit fn(ctx)) are the ones ../ walks across.
type frame struct {
	ctx         starlark.Value
	pushesCtx   bool
	data        map[string]starlark.Value
	blockParams map[string]starlark.Value
	parent      *frame
}

func (f *frame) child(ctx starlark.Value, pushesCtx bool) *frame {
	return &frame{ctx: ctx, pushesCtx: pushesCtx, parent: f}
}

// ancestor returns the frame depth context switches up, or nil.
func (f *frame) ancestor(depth int) *frame {
	cur := f
	for i := 0; i < depth && cur != nil; i++ {
		for cur != nil && !cur.pushesCtx {
			cur = cur.parent
		}
		if cur != nil {
			cur = cur.parent
		}
	}
	return cur
}

// dataAncestor is like ancestor but walks data frames (@../index).
func (f *frame) dataAncestor(depth int) *frame {
	cur := f
	for i := 0; i < depth && cur != nil; i++ {
		for cur != nil && cur.data == nil {
			cur = cur.parent
		}
		if cur != nil {
			cur = cur.parent
		}
	}
	return cur
}

func (f *frame) dataVar(name string) (starlark.Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if val, found := cur.data[name]; found {
			return val, true
		}
	}
	return nil, false
}

func (f *frame) blockParam(name string) (starlark.Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if val, found := cur.blockParams[name]; found {
			return val, true
		}
	}
	return nil, false
}

// dataDict flattens visible @data variables, nearest frame wins.
func (f *frame) dataDict() *starlark.Dict {
	vars := map[string]starlark.Value{}
	for cur := f; cur != nil; cur = cur.parent {
		for k, v := range cur.data {
			if _, found := vars[k]; !found {
				vars[k] = v
			}
		}
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := starlark.NewDict(len(keys))
	for _, k := range keys {
		result.SetKey(starlark.String(k), vars[k])
	}
	return result
}

func bindBlockParams(names []string, vals ...starlark.Value) map[string]starlark.Value {
	if len(names) == 0 {
		return nil
	}
	result := map[string]starlark.Value{}
	for i, name := range names {
		if i < len(vals) {
			result[name] = vals[i]
		}
	}
	return result
}
