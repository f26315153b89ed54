// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"
	"strings"

	"carvel.dev/hbsmod/pkg/template"
	"github.com/k14s/starlark-go/starlark"
)

// partial renders {{> name ctx key=val}}. Registered partials are
// compiled templates, template source strings or callables taking
// (context, options) such as the render function of a generated module.
func (r *renderer) partial(node *template.Node, f *frame) (string, error) {
	name := node.PartialName
	if node.PartialExpr != nil {
		val, err := r.value(node.PartialExpr, f)
		if err != nil {
			return "", err
		}
		name = Stringify(val)
	}

	partial, found, err := r.partials.Get(starlark.String(name))
	if err != nil || !found || partial == starlark.None {
		return "", fmt.Errorf("The partial %s could not be found", name)
	}

	if len(node.Params) > 1 {
		return "", fmt.Errorf("Unsupported number of partial arguments: %d", len(node.Params))
	}

	ctx := f.ctx
	if len(node.Params) == 1 {
		ctx, err = r.value(node.Params[0], f)
		if err != nil {
			return "", err
		}
	}

	if len(node.Hash) > 0 {
		hash, err := r.hash(node.Hash, f)
		if err != nil {
			return "", err
		}
		ctx, err = extendContext(ctx, hash)
		if err != nil {
			return "", err
		}
	}

	if r.depth >= maxPartialDepth {
		return "", fmt.Errorf("Rendering partial %s: exceeded maximum partial depth of %d", name, maxPartialDepth)
	}
	r.depth++
	defer func() { r.depth-- }()

	out, err := r.renderPartial(name, partial, ctx, f)
	if err != nil {
		return "", err
	}

	if len(node.Indent) > 0 {
		out = indentLines(out, node.Indent)
	}
	return out, nil
}

func (r *renderer) renderPartial(name string, partial, ctx starlark.Value, f *frame) (string, error) {
	switch typedPartial := partial.(type) {
	case *Template:
		return r.fn(typedPartial.Program(), f, ctx, true, nil, nil)

	case starlark.String:
		prog, found := r.compiled[name]
		if !found {
			tpl, err := Compile(name, string(typedPartial))
			if err != nil {
				return "", fmt.Errorf("Compiling partial %s: %s", name, err)
			}
			prog = tpl.Program()
			r.compiled[name] = prog
		}
		return r.fn(prog, f, ctx, true, nil, nil)

	case starlark.Callable:
		opts := starlark.NewDict(3)
		opts.SetKey(starlark.String("helpers"), r.helpers)
		opts.SetKey(starlark.String("partials"), r.partials)
		opts.SetKey(starlark.String("data"), f.dataDict())

		result, err := starlark.Call(r.thread, typedPartial, starlark.Tuple{ctx, opts}, nil)
		if err != nil {
			return "", fmt.Errorf("Rendering partial %s: %s", name, err)
		}
		return Stringify(result), nil

	default:
		return "", fmt.Errorf("Expected partial %s to be a template, a string or callable, but was %s", name, partial.Type())
	}
}

// extendContext copies a mapping context and sets hash pairs on top.
// Non-mapping contexts are replaced by the hash.
func extendContext(ctx starlark.Value, hash *starlark.Dict) (starlark.Value, error) {
	result := starlark.NewDict(hash.Len())
	if mapping, ok := ctx.(starlark.IterableMapping); ok {
		for _, item := range mapping.Items() {
			err := result.SetKey(item.Index(0), item.Index(1))
			if err != nil {
				return nil, err
			}
		}
	}
	for _, item := range hash.Items() {
		err := result.SetKey(item.Index(0), item.Index(1))
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// indentLines prefixes every line of a standalone partial's output.
func indentLines(out, indent string) string {
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if i == len(lines)-1 && len(line) == 0 {
			break
		}
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
