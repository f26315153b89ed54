// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"fmt"
	"strconv"
	"strings"

	"carvel.dev/hbsmod/pkg/filepos"
	"github.com/aymerick/raymond/ast"
)

type Namespace int

const (
	HelperNamespace Namespace = iota
	PartialNamespace
)

func (n Namespace) String() string {
	switch n {
	case HelperNamespace:
		return "helper"
	case PartialNamespace:
		return "partial"
	default:
		return fmt.Sprintf("namespace(%d)", int(n))
	}
}

var builtinHelpers = map[string]struct{}{
	"if":     {},
	"unless": {},
	"each":   {},
	"with":   {},
	"lookup": {},
	"log":    {},
}

// BuiltinHelpers lists the helpers every runtime provides.
func BuiltinHelpers() []string {
	return []string{"if", "unless", "each", "with", "lookup", "log"}
}

func IsBuiltinHelper(name string) bool {
	_, found := builtinHelpers[name]
	return found
}

// Skipped is a reference whose name is only known at render time.
type Skipped struct {
	Namespace Namespace
	Expr      string
	Position  filepos.Position
}

func (s Skipped) String() string {
	return fmt.Sprintf("dynamic %s reference %s at %s", s.Namespace, s.Expr, s.Position.Describe())
}

type Refs struct {
	Helpers  []string
	Partials []string
	Skipped  []Skipped
}

// Empty reports whether no static dependency was found.
func (r Refs) Empty() bool {
	return len(r.Helpers) == 0 && len(r.Partials) == 0
}

// Scan walks program in document order.
func Scan(program *ast.Program) Refs {
	s := &scanner{
		seen: map[Namespace]map[string]struct{}{
			HelperNamespace:  {},
			PartialNamespace: {},
		},
	}
	s.program(program)
	return s.refs
}

type scanner struct {
	refs Refs
	seen map[Namespace]map[string]struct{}

	// block params visible at the current node, innermost last
	blockParams []string
}

func (s *scanner) add(ns Namespace, name string) {
	if _, found := s.seen[ns][name]; found {
		return
	}
	s.seen[ns][name] = struct{}{}

	switch ns {
	case HelperNamespace:
		s.refs.Helpers = append(s.refs.Helpers, name)
	case PartialNamespace:
		s.refs.Partials = append(s.refs.Partials, name)
	}
}

func (s *scanner) program(program *ast.Program) {
	if program == nil {
		return
	}

	scopeLen := len(s.blockParams)
	s.blockParams = append(s.blockParams, program.BlockParams...)
	defer func() { s.blockParams = s.blockParams[:scopeLen] }()

	for _, stmt := range program.Body {
		s.node(stmt)
	}
}

func (s *scanner) node(node ast.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case ast.NodeProgram:
		s.program(node.(*ast.Program))

	case ast.NodeMustache:
		s.expression(node.(*ast.MustacheStatement).Expression, false)

	case ast.NodeBlock:
		block := node.(*ast.BlockStatement)
		s.expression(block.Expression, false)
		s.program(block.Program)
		s.program(block.Inverse)

	case ast.NodePartial:
		s.partial(node.(*ast.PartialStatement))

	case ast.NodeSubExpression:
		s.expression(node.(*ast.SubExpression).Expression, true)

	case ast.NodeExpression:
		s.expression(node.(*ast.Expression), false)

	case ast.NodeHash:
		s.hash(node.(*ast.Hash))

	case ast.NodeHashPair:
		s.node(node.(*ast.HashPair).Val)

	case ast.NodeContent, ast.NodeComment, ast.NodePath,
		ast.NodeString, ast.NodeNumber, ast.NodeBoolean:
		// leaves

	default:
		panic(fmt.Sprintf("Unexpected template node type %d", node.Type()))
	}
}

// expression classifies expr as a helper call when it has arguments
// or is a sub-expression. Plain {{name}} lookups stay ambiguous and are
// left to the runtime.
func (s *scanner) expression(expr *ast.Expression, subExpr bool) {
	if expr == nil {
		return
	}

	if subExpr || len(expr.Params) > 0 || expr.Hash != nil {
		if name, ok := helperName(expr.Path); ok && !IsBuiltinHelper(name) && !s.isBlockParam(name) {
			s.add(HelperNamespace, name)
		}
	}

	for _, param := range expr.Params {
		s.node(param)
	}
	s.hash(expr.Hash)
}

func (s *scanner) isBlockParam(name string) bool {
	for _, param := range s.blockParams {
		if param == name {
			return true
		}
	}
	return false
}

func (s *scanner) hash(hash *ast.Hash) {
	if hash == nil {
		return
	}
	for _, pair := range hash.Pairs {
		s.node(pair.Val)
	}
}

func (s *scanner) partial(partial *ast.PartialStatement) {
	name, ok := PartialName(partial.Name)
	if ok {
		s.add(PartialNamespace, name)
	} else {
		s.refs.Skipped = append(s.refs.Skipped, Skipped{
			Namespace: PartialNamespace,
			Expr:      partial.Name.String(),
			Position:  position(partial.Name),
		})
		// still walk the name for helper calls
		s.node(partial.Name)
	}

	for _, param := range partial.Params {
		s.node(param)
	}
	s.hash(partial.Hash)
}

// PartialName returns the static name of a partial reference.
func PartialName(node ast.Node) (string, bool) {
	switch typedNode := node.(type) {
	case *ast.PathExpression:
		return typedNode.Original, true
	case *ast.StringLiteral:
		return typedNode.Value, true
	case *ast.NumberLiteral:
		if len(typedNode.Original) > 0 {
			return typedNode.Original, true
		}
		return strconv.FormatFloat(typedNode.Value, 'f', -1, 64), true
	case *ast.BooleanLiteral:
		return strconv.FormatBool(typedNode.Value), true
	default:
		return "", false
	}
}

// helperName accepts the callees Handlebars dispatches to helpers: a single
// simple identifier, or a "./name" reference to a helper module next to the
// template. Dotted, this-scoped and parent paths are context lookups.
func helperName(node ast.Node) (string, bool) {
	path, ok := node.(*ast.PathExpression)
	if !ok || path.Data || path.Depth > 0 || len(path.Parts) != 1 {
		return "", false
	}
	name := path.Parts[0]
	if name == "" || strings.ContainsAny(name, "./") {
		return "", false
	}

	switch path.Original {
	case name:
		return name, !path.Scoped
	case "./" + name:
		return path.Original, true
	default:
		return "", false
	}
}

func position(node ast.Node) filepos.Position {
	if node == nil || node.Location().Line <= 0 {
		return filepos.Position{}
	}
	return filepos.At("", node.Location().Line)
}
