// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"strings"
)

const (
	// Format is the version of the serialized Program layout.
	Format = "1.0.0"
)

type NodeKind string

const (
	NodeText     NodeKind = "text"
	NodeMustache NodeKind = "mustache"
	NodeBlock    NodeKind = "block"
	NodePartial  NodeKind = "partial"
)

type ExprKind string

const (
	ExprPath   ExprKind = "path"
	ExprString ExprKind = "string"
	ExprNumber ExprKind = "number"
	ExprBool   ExprKind = "bool"
	ExprCall   ExprKind = "call"
)

type Program struct {
	Format      string   `json:"format,omitempty"`
	Body        []*Node  `json:"body"`
	BlockParams []string `json:"blockParams,omitempty"`
}

type Node struct {
	Kind NodeKind `json:"kind"`
	Line int      `json:"line,omitempty"`

	// text
	Text string `json:"text,omitempty"`

	// mustache and block
	Expr    *Expr    `json:"expr,omitempty"`
	Raw     bool     `json:"raw,omitempty"`
	Program *Program `json:"program,omitempty"`
	Inverse *Program `json:"inverse,omitempty"`

	// partial; PartialExpr is set instead of PartialName for
	// names computed at render time
	PartialName string     `json:"partialName,omitempty"`
	PartialExpr *Expr      `json:"partialExpr,omitempty"`
	Params      []*Expr    `json:"params,omitempty"`
	Hash        []HashPair `json:"hash,omitempty"`
	Indent      string     `json:"indent,omitempty"`
}

type Expr struct {
	Kind ExprKind `json:"kind"`

	// path, and callee of call
	Path *Path `json:"path,omitempty"`

	Str   string  `json:"str,omitempty"`
	Num   float64 `json:"num,omitempty"`
	IsInt bool    `json:"isInt,omitempty"`
	Bool  bool    `json:"bool,omitempty"`

	// call
	Params []*Expr    `json:"params,omitempty"`
	Hash   []HashPair `json:"hash,omitempty"`
}

type HashPair struct {
	Key   string `json:"key"`
	Value *Expr  `json:"value"`
}

type Path struct {
	Original string   `json:"original"`
	Parts    []string `json:"parts,omitempty"`
	Depth    int      `json:"depth,omitempty"`
	Data     bool     `json:"data,omitempty"`
	Scoped   bool     `json:"scoped,omitempty"`
}

// IsThis reports whether the path refers to the current context itself.
func (p *Path) IsThis() bool {
	return len(p.Parts) == 0 && !p.Data
}

// HasArgs reports whether a call carries params or hash pairs.
func (e *Expr) HasArgs() bool {
	return len(e.Params) > 0 || len(e.Hash) > 0
}

// Name is the name an expression is looked up under when
// used as a helper.
func (e *Expr) Name() string {
	if e.Path != nil {
		return e.Path.Original
	}
	return e.Str
}

// String renders the expression roughly as written in the template.
func (e *Expr) String() string {
	switch e.Kind {
	case ExprPath:
		return e.Path.Original
	case ExprString:
		return `"` + e.Str + `"`
	case ExprNumber:
		return formatNumber(e.Num, e.IsInt)
	case ExprBool:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprCall:
		parts := []string{e.Name()}
		for _, param := range e.Params {
			parts = append(parts, param.String())
		}
		for _, pair := range e.Hash {
			parts = append(parts, pair.Key+"="+pair.Value.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "?"
	}
}
