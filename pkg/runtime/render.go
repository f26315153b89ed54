// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"carvel.dev/hbsmod/pkg/template"
	"github.com/k14s/starlark-go/starlark"
)

const (
	maxPartialDepth = 64
)

// ExecuteOpts are the registries and @data variables of one render call.
// Nil dicts are treated as empty.
type ExecuteOpts struct {
	Helpers  *starlark.Dict
	Partials *starlark.Dict
	Data     *starlark.Dict
}

// Execute renders tpl against data.
func Execute(thread *starlark.Thread, tpl *Template, data starlark.Value, opts ExecuteOpts) (string, error) {
	if data == nil {
		data = starlark.None
	}

	r := &renderer{
		thread:   thread,
		helpers:  orEmptyDict(opts.Helpers),
		partials: orEmptyDict(opts.Partials),
		compiled: map[string]*template.Program{},
	}

	rootData := map[string]starlark.Value{}
	if opts.Data != nil {
		for _, item := range opts.Data.Items() {
			if key, ok := item.Index(0).(starlark.String); ok {
				rootData[string(key)] = item.Index(1)
			}
		}
	}
	if _, found := rootData["root"]; !found {
		rootData["root"] = data
	}

	root := &frame{ctx: data, pushesCtx: true, data: rootData}

	var sb strings.Builder
	err := r.program(&sb, tpl.Program(), root)
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

type renderer struct {
	thread   *starlark.Thread
	helpers  *starlark.Dict
	partials *starlark.Dict
	compiled map[string]*template.Program
	depth    int
}

func (r *renderer) program(sb *strings.Builder, prog *template.Program, f *frame) error {
	if prog == nil {
		return nil
	}
	for _, node := range prog.Body {
		err := r.node(sb, node, f)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) node(sb *strings.Builder, node *template.Node, f *frame) error {
	switch node.Kind {
	case template.NodeText:
		sb.WriteString(node.Text)

	case template.NodeMustache:
		val, err := r.mustache(node, f)
		if err != nil {
			return err
		}
		if _, safe := val.(SafeString); safe || node.Raw {
			sb.WriteString(Stringify(val))
		} else {
			sb.WriteString(Escape(Stringify(val)))
		}

	case template.NodeBlock:
		val, err := r.block(node, f)
		if err != nil {
			return err
		}
		sb.WriteString(Stringify(val))

	case template.NodePartial:
		out, err := r.partial(node, f)
		if err != nil {
			return err
		}
		sb.WriteString(out)

	default:
		return fmt.Errorf("Unknown template node kind '%s'", node.Kind)
	}
	return nil
}

// fn renders prog in a child frame of f.
func (r *renderer) fn(prog *template.Program, f *frame, ctx starlark.Value, pushesCtx bool,
	data map[string]starlark.Value, blockParams map[string]starlark.Value) (string, error) {

	if prog == nil {
		return "", nil
	}

	child := f.child(ctx, pushesCtx)
	child.data = data
	child.blockParams = blockParams

	var sb strings.Builder
	err := r.program(&sb, prog, child)
	return sb.String(), err
}

func (r *renderer) mustache(node *template.Node, f *frame) (starlark.Value, error) {
	expr := node.Expr

	if expr.Kind == template.ExprCall {
		return r.call(expr, f, nil)
	}

	if expr.Kind == template.ExprPath && isHelperCandidate(expr.Path) {
		name := expr.Path.Original
		if helper, found := r.helper(name); found {
			return r.invoke(name, helper, nil, starlark.NewDict(0), f, nil)
		}
		if builtin, found := builtinHelpers[name]; found {
			return builtin(r, nil, starlark.NewDict(0), f, nil)
		}
	}

	val, err := r.value(expr, f)
	if err != nil {
		return nil, err
	}

	// functions found in the data are called for their value
	if fn, ok := val.(starlark.Callable); ok {
		return starlark.Call(r.thread, fn, nil, nil)
	}
	return val, nil
}

func (r *renderer) block(node *template.Node, f *frame) (starlark.Value, error) {
	expr := node.Expr

	if expr.Kind == template.ExprCall {
		return r.call(expr, f, node)
	}

	if expr.Kind == template.ExprPath && isHelperCandidate(expr.Path) {
		name := expr.Path.Original
		if helper, found := r.helper(name); found {
			return r.invoke(name, helper, nil, starlark.NewDict(0), f, node)
		}
		if builtin, found := builtinHelpers[name]; found {
			return builtin(r, nil, starlark.NewDict(0), f, node)
		}
	}

	val, err := r.value(expr, f)
	if err != nil {
		return nil, err
	}
	return r.section(val, node, f)
}

// section renders a block whose name is not a helper: true and
// non-empty values render the body, lists iterate, other values
// become the body's context.
func (r *renderer) section(val starlark.Value, node *template.Node, f *frame) (starlark.Value, error) {
	if fn, ok := val.(starlark.Callable); ok {
		var err error
		val, err = starlark.Call(r.thread, fn, nil, nil)
		if err != nil {
			return nil, err
		}
	}

	var out string
	var err error

	switch typedVal := val.(type) {
	case starlark.Bool:
		if typedVal {
			out, err = r.fn(node.Program, f, f.ctx, false, nil, nil)
		} else {
			out, err = r.fn(node.Inverse, f, f.ctx, false, nil, nil)
		}
	case *starlark.List, starlark.Tuple:
		return r.iterate(val, node, f)
	default:
		if IsEmpty(val, false) {
			out, err = r.fn(node.Inverse, f, f.ctx, false, nil, nil)
		} else {
			out, err = r.fn(node.Program, f, val, true, nil, bindBlockParams(blockParamNames(node.Program), val))
		}
	}
	return starlark.String(out), err
}

// iterate renders node's body for each item of a list, tuple or
// mapping, and its inverse when there is nothing to iterate.
func (r *renderer) iterate(val starlark.Value, node *template.Node, f *frame) (starlark.Value, error) {
	var sb strings.Builder
	names := blockParamNames(node.Program)

	switch typedVal := val.(type) {
	case starlark.Indexable:
		if _, isString := val.(starlark.String); isString {
			break
		}
		n := typedVal.Len()
		for i := 0; i < n; i++ {
			item := typedVal.Index(i)
			idx := starlark.MakeInt(i)
			data := map[string]starlark.Value{
				"index": idx,
				"first": starlark.Bool(i == 0),
				"last":  starlark.Bool(i == n-1),
			}
			out, err := r.fn(node.Program, f, item, true, data, bindBlockParams(names, item, idx))
			if err != nil {
				return nil, err
			}
			sb.WriteString(out)
		}
		if n > 0 {
			return starlark.String(sb.String()), nil
		}

	case starlark.IterableMapping:
		items := typedVal.Items()
		for i, kv := range items {
			key, item := kv.Index(0), kv.Index(1)
			data := map[string]starlark.Value{
				"key":   key,
				"index": starlark.MakeInt(i),
				"first": starlark.Bool(i == 0),
				"last":  starlark.Bool(i == len(items)-1),
			}
			out, err := r.fn(node.Program, f, item, true, data, bindBlockParams(names, item, key))
			if err != nil {
				return nil, err
			}
			sb.WriteString(out)
		}
		if len(items) > 0 {
			return starlark.String(sb.String()), nil
		}
	}

	out, err := r.fn(node.Inverse, f, f.ctx, false, nil, nil)
	return starlark.String(out), err
}

func (r *renderer) value(expr *template.Expr, f *frame) (starlark.Value, error) {
	switch expr.Kind {
	case template.ExprPath:
		return r.lookup(expr.Path, f), nil
	case template.ExprString:
		return starlark.String(expr.Str), nil
	case template.ExprNumber:
		if expr.IsInt {
			return starlark.MakeInt64(int64(expr.Num)), nil
		}
		return starlark.Float(expr.Num), nil
	case template.ExprBool:
		return starlark.Bool(expr.Bool), nil
	case template.ExprCall:
		return r.call(expr, f, nil)
	default:
		return nil, fmt.Errorf("Unknown expression kind '%s'", expr.Kind)
	}
}

func (r *renderer) values(exprs []*template.Expr, f *frame) ([]starlark.Value, error) {
	var result []starlark.Value
	for _, expr := range exprs {
		val, err := r.value(expr, f)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}

func (r *renderer) hash(pairs []template.HashPair, f *frame) (*starlark.Dict, error) {
	result := starlark.NewDict(len(pairs))
	for _, pair := range pairs {
		val, err := r.value(pair.Value, f)
		if err != nil {
			return nil, err
		}
		err = result.SetKey(starlark.String(pair.Key), val)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// lookup resolves a path. Anything missing along the way is None.
func (r *renderer) lookup(path *template.Path, f *frame) starlark.Value {
	parts := path.Parts
	var base starlark.Value

	switch {
	case path.Data:
		if len(parts) == 0 {
			return starlark.None
		}
		val, found := f.dataAncestor(path.Depth).dataVar(parts[0])
		if !found {
			return starlark.None
		}
		base, parts = val, parts[1:]

	case path.Depth == 0 && !path.Scoped && len(parts) > 0:
		if val, found := f.blockParam(parts[0]); found {
			base, parts = val, parts[1:]
		} else {
			base = f.ctx
		}

	default:
		ancestor := f.ancestor(path.Depth)
		if ancestor == nil {
			return starlark.None
		}
		base = ancestor.ctx
	}

	for _, part := range parts {
		base = property(base, part)
	}
	if base == nil {
		return starlark.None
	}
	return base
}

func property(val starlark.Value, name string) starlark.Value {
	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return starlark.None

	case starlark.Mapping:
		result, found, err := typedVal.Get(starlark.String(name))
		if err != nil || !found {
			return starlark.None
		}
		return result

	case starlark.Indexable:
		if name == "length" {
			return starlark.MakeInt(typedVal.Len())
		}
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= typedVal.Len() {
			return starlark.None
		}
		return typedVal.Index(idx)

	case starlark.HasAttrs:
		result, err := typedVal.Attr(name)
		if err != nil || result == nil {
			return starlark.None
		}
		return result

	default:
		return starlark.None
	}
}

// isHelperCandidate reports simple identifiers such as {{name}} that may
// name a helper even without arguments.
func isHelperCandidate(path *template.Path) bool {
	return !path.Data && path.Depth == 0 && !path.Scoped && len(path.Parts) == 1
}

func blockParamNames(prog *template.Program) []string {
	if prog == nil {
		return nil
	}
	return prog.BlockParams
}

func orEmptyDict(dict *starlark.Dict) *starlark.Dict {
	if dict == nil {
		return starlark.NewDict(0)
	}
	return dict
}
