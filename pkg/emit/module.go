// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"fmt"
	"strings"

	"carvel.dev/hbsmod/pkg/resolve"
	"carvel.dev/hbsmod/pkg/scan"
)

const (
	RuntimeExport = "runtime"
	HelperExport  = "helper"
	PartialExport = "render"

	runtimeAlias  = "_hbs_runtime"
	templateAlias = "_hbs_template"
	helperPrefix  = "_hbs_helper_"
	partialPrefix = "_hbs_partial_"
)

type Module struct {
	// Name only appears in the generated header
	Name    string
	Runtime string
	Edges   []resolve.Edge

	// Payload is the serialized template when Inline is set,
	// and raw template source otherwise.
	Payload string
	Inline  bool
}

type binding struct {
	name      string
	specifier string
	alias     string
}

func Emit(m Module) string {
	helpers := bindings(m.Edges, scan.HelperNamespace, helperPrefix)
	partials := bindings(m.Edges, scan.PartialNamespace, partialPrefix)

	var sb strings.Builder

	fmt.Fprintf(&sb, "# Code generated by hbsmod from %s. DO NOT EDIT.\n", headerName(m.Name))
	fmt.Fprintf(&sb, "load(%s, %s=%s)\n", Quote(m.Runtime), runtimeAlias, Quote(RuntimeExport))
	for _, b := range helpers {
		fmt.Fprintf(&sb, "load(%s, %s=%s)\n", Quote(b.specifier), b.alias, Quote(HelperExport))
	}
	for _, b := range partials {
		fmt.Fprintf(&sb, "load(%s, %s=%s)\n", Quote(b.specifier), b.alias, Quote(PartialExport))
	}
	sb.WriteString("\n")

	entryPoint := "compile"
	if m.Inline {
		entryPoint = "template"
	}
	fmt.Fprintf(&sb, "%s = %s.%s(%s)\n", templateAlias, runtimeAlias, entryPoint, Quote(m.Payload))
	sb.WriteString("\n")

	sb.WriteString("def render(data, options=None):\n")
	sb.WriteString("    opts = dict(options or {})\n")
	sb.WriteString("    helpers = dict(opts.get(\"helpers\") or {})\n")
	for _, b := range helpers {
		fmt.Fprintf(&sb, "    helpers[%s] = %s\n", Quote(b.name), b.alias)
	}
	sb.WriteString("    partials = dict(opts.get(\"partials\") or {})\n")
	for _, b := range partials {
		fmt.Fprintf(&sb, "    partials[%s] = %s\n", Quote(b.name), b.alias)
	}
	sb.WriteString("    opts[\"helpers\"] = helpers\n")
	sb.WriteString("    opts[\"partials\"] = partials\n")
	fmt.Fprintf(&sb, "    return %s.execute(%s, data, opts)\n", runtimeAlias, templateAlias)

	return sb.String()
}

func bindings(edges []resolve.Edge, ns scan.Namespace, prefix string) []binding {
	var names, specs []string
	for _, edge := range edges {
		if edge.Namespace == ns {
			names = append(names, edge.Name)
			specs = append(specs, edge.Specifier)
		}
	}

	var result []binding
	for i, ident := range Identifiers(names) {
		result = append(result, binding{
			name:      names[i],
			specifier: specs[i],
			alias:     prefix + ident,
		})
	}
	return result
}

func headerName(name string) string {
	if len(name) == 0 {
		return "template"
	}
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(name)
}
