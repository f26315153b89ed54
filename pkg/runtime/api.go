// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"

	"carvel.dev/hbsmod/pkg/core"
	"carvel.dev/hbsmod/pkg/template"
	"carvel.dev/hbsmod/pkg/version"
	"github.com/aymerick/raymond/parser"
	goversion "github.com/hashicorp/go-version"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

const (
	// SupportedFormats is the range of template formats this runtime executes.
	SupportedFormats = ">= 1.0.0, < 2.0.0"
)

var (
	runtimeMod = &starlarkstruct.Module{
		Name: "runtime",
		Members: starlark.StringDict{
			"template": starlark.NewBuiltin("runtime.template", core.ErrWrapper(runtimeModule{}.Template)),
			"compile":  starlark.NewBuiltin("runtime.compile", core.ErrWrapper(runtimeModule{}.Compile)),
			"execute":  starlark.NewBuiltin("runtime.execute", core.ErrWrapper(runtimeModule{}.Execute)),
			"safe":     starlark.NewBuiltin("runtime.safe", core.ErrWrapper(runtimeModule{}.Safe)),
			"escape":   starlark.NewBuiltin("runtime.escape", core.ErrWrapper(runtimeModule{}.Escape)),
			"version":  starlark.String(version.Version),
			"format":   starlark.String(template.Format),
		},
	}

	// API contains the definition of the runtime module
	API = starlark.StringDict{"runtime": runtimeMod}
)

// Decode reads an inline payload and checks its format version.
func Decode(name, payload string) (*Template, error) {
	program, err := template.Unmarshal(payload)
	if err != nil {
		return nil, err
	}
	err = CheckFormat(program.Format)
	if err != nil {
		return nil, err
	}
	return NewTemplate(name, program), nil
}

// Compile parses template source.
func Compile(name, source string) (*Template, error) {
	parsed, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	program, err := template.Lower(parsed)
	if err != nil {
		return nil, err
	}
	return NewTemplate(name, program), nil
}

func CheckFormat(format string) error {
	ver, err := goversion.NewVersion(format)
	if err != nil {
		return fmt.Errorf("Parsing template format version '%s': %s", format, err)
	}

	constraints, err := goversion.NewConstraint(SupportedFormats)
	if err != nil {
		return err
	}

	if !constraints.Check(ver) {
		return fmt.Errorf("Template format %s is not supported by this runtime "+
			"(supported: %s); recompile the template with a matching hbsmod", format, SupportedFormats)
	}
	return nil
}

type runtimeModule struct{}

func (b runtimeModule) Template(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 || len(kwargs) > 0 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	payload, err := core.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	return Decode(threadName(thread), payload)
}

func (b runtimeModule) Compile(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 || len(kwargs) > 0 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}

	source, err := core.NewStarlarkValue(args.Index(0)).AsString()
	if err != nil {
		return starlark.None, err
	}

	return Compile(threadName(thread), source)
}

func (b runtimeModule) Execute(thread *starlark.Thread, f *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var tplVal starlark.Value
	var data starlark.Value = starlark.None
	var options starlark.Value = starlark.None

	err := starlark.UnpackArgs(f.Name(), args, kwargs, "template", &tplVal, "data?", &data, "options?", &options)
	if err != nil {
		return starlark.None, err
	}

	tpl, ok := tplVal.(*Template)
	if !ok {
		return starlark.None, fmt.Errorf("expected template to be %s, but was %s", (&Template{}).Type(), tplVal.Type())
	}

	opts, err := NewExecuteOpts(options)
	if err != nil {
		return starlark.None, err
	}

	out, err := Execute(thread, tpl, data, opts)
	if err != nil {
		return starlark.None, err
	}
	return starlark.String(out), nil
}

func (b runtimeModule) Safe(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 || len(kwargs) > 0 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	return SafeString(Stringify(args.Index(0))), nil
}

func (b runtimeModule) Escape(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if args.Len() != 1 || len(kwargs) > 0 {
		return starlark.None, fmt.Errorf("expected exactly one argument")
	}
	if safe, ok := args.Index(0).(SafeString); ok {
		return starlark.String(safe), nil
	}
	return starlark.String(Escape(Stringify(args.Index(0)))), nil
}

// NewExecuteOpts reads the options dict passed to execute.
func NewExecuteOpts(options starlark.Value) (ExecuteOpts, error) {
	dict, err := core.NewStarlarkValue(options).AsDict()
	if err != nil {
		return ExecuteOpts{}, fmt.Errorf("options: %s", err)
	}

	var opts ExecuteOpts
	fields := map[string]**starlark.Dict{
		"helpers":  &opts.Helpers,
		"partials": &opts.Partials,
		"data":     &opts.Data,
	}

	for _, item := range dict.Items() {
		key, err := core.NewStarlarkValue(item.Index(0)).AsString()
		if err != nil {
			return ExecuteOpts{}, fmt.Errorf("options: %s", err)
		}
		field, found := fields[key]
		if !found {
			// other keys are ignored
			continue
		}
		*field, err = core.NewStarlarkValue(item.Index(1)).AsDict()
		if err != nil {
			return ExecuteOpts{}, fmt.Errorf("options.%s: %s", key, err)
		}
	}
	return opts, nil
}

func threadName(thread *starlark.Thread) string {
	if thread == nil || len(thread.Name) == 0 {
		return "template"
	}
	return thread.Name
}
