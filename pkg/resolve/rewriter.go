// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"

	"carvel.dev/hbsmod/pkg/config"
	"carvel.dev/hbsmod/pkg/scan"
)

// Edge is a dependency of a compiled template module.
type Edge struct {
	Ref
	Specifier string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s %q -> %q", e.Namespace, e.Name, e.Specifier)
}

type Rewriter struct {
	pipeline       Pipeline
	reserved       map[string]struct{}
	ignoreHelpers  bool
	ignorePartials bool
}

func NewRewriter(cfg config.Config, fs FileSystem) *Rewriter {
	reserved := map[string]struct{}{}
	for _, name := range scan.BuiltinHelpers() {
		reserved[name] = struct{}{}
	}
	for _, name := range cfg.KnownHelpers() {
		reserved[name] = struct{}{}
	}

	return &Rewriter{
		pipeline: Pipeline{
			ExplicitPathStrategy{},
			SearchDirsStrategy{
				HelperDirs:        cfg.HelperDirs(),
				PartialDirs:       cfg.PartialSearchDirs(),
				HelperExtensions:  []string{HelperExtension},
				PartialExtensions: cfg.Extensions(),
				FS:                fs,
			},
			BareNameStrategy{},
		},
		reserved:       reserved,
		ignoreHelpers:  cfg.IgnoreHelpers(),
		ignorePartials: cfg.IgnorePartials(),
	}
}

// Rewrite returns false when ref stays resolved at render time through
// the runtime's own registry.
func (r *Rewriter) Rewrite(ref Ref) (Edge, bool) {
	switch ref.Namespace {
	case scan.HelperNamespace:
		if r.ignoreHelpers {
			return Edge{}, false
		}
		if _, found := r.reserved[ref.Name]; found {
			return Edge{}, false
		}
	case scan.PartialNamespace:
		if r.ignorePartials {
			return Edge{}, false
		}
	}

	spec, ok := r.pipeline.Resolve(ref)
	if !ok {
		return Edge{}, false
	}
	return Edge{Ref: ref, Specifier: spec}, true
}

// RewriteAll rewrites helpers first, then partials, keeping scan order.
func (r *Rewriter) RewriteAll(refs scan.Refs) []Edge {
	var edges []Edge
	for _, name := range refs.Helpers {
		if edge, ok := r.Rewrite(Ref{Namespace: scan.HelperNamespace, Name: name}); ok {
			edges = append(edges, edge)
		}
	}
	for _, name := range refs.Partials {
		if edge, ok := r.Rewrite(Ref{Namespace: scan.PartialNamespace, Name: name}); ok {
			edges = append(edges, edge)
		}
	}
	return edges
}
