// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"strconv"

	"github.com/aymerick/raymond/ast"
)

// Lower converts a parsed template into a Program stamped with Format.
func Lower(program *ast.Program) (*Program, error) {
	result, err := lowerProgram(program)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &Program{}
	}
	result.Format = Format
	return result, nil
}

func lowerProgram(program *ast.Program) (*Program, error) {
	if program == nil {
		return nil, nil
	}

	result := &Program{Body: []*Node{}}
	if len(program.BlockParams) > 0 {
		result.BlockParams = append([]string{}, program.BlockParams...)
	}

	for _, stmt := range program.Body {
		node, err := lowerStatement(stmt)
		if err != nil {
			return nil, err
		}
		if node != nil {
			result.Body = append(result.Body, node)
		}
	}
	return result, nil
}

func lowerStatement(stmt ast.Node) (*Node, error) {
	line := stmt.Location().Line

	switch typedStmt := stmt.(type) {
	case *ast.ContentStatement:
		if len(typedStmt.Value) == 0 {
			return nil, nil
		}
		return &Node{Kind: NodeText, Text: typedStmt.Value}, nil

	case *ast.CommentStatement:
		return nil, nil

	case *ast.MustacheStatement:
		expr, err := lowerStatementExpr(typedStmt.Expression)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeMustache, Line: line, Expr: expr, Raw: typedStmt.Unescaped}, nil

	case *ast.BlockStatement:
		expr, err := lowerStatementExpr(typedStmt.Expression)
		if err != nil {
			return nil, err
		}
		program, err := lowerProgram(typedStmt.Program)
		if err != nil {
			return nil, err
		}
		inverse, err := lowerProgram(typedStmt.Inverse)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeBlock, Line: line, Expr: expr, Program: program, Inverse: inverse}, nil

	case *ast.PartialStatement:
		return lowerPartial(typedStmt)

	default:
		return nil, fmt.Errorf("Unexpected statement %T on line %d", stmt, line)
	}
}

// lowerStatementExpr turns the expression of a mustache or block into a
// call when it has arguments and into a plain value lookup otherwise.
func lowerStatementExpr(expr *ast.Expression) (*Expr, error) {
	if expr == nil {
		return nil, fmt.Errorf("Expected statement to have an expression")
	}
	if len(expr.Params) == 0 && expr.Hash == nil {
		return lowerValue(expr.Path)
	}
	return lowerCall(expr)
}

func lowerCall(expr *ast.Expression) (*Expr, error) {
	callee, err := lowerValue(expr.Path)
	if err != nil {
		return nil, err
	}

	result := &Expr{Kind: ExprCall, Path: callee.Path}
	if callee.Path == nil {
		// literal helper names such as {{"my helper" x}}
		name := callee.String()
		if callee.Kind == ExprString {
			name = callee.Str
		}
		result.Path = &Path{Original: name, Parts: []string{name}}
	}

	result.Params, err = lowerParams(expr.Params)
	if err != nil {
		return nil, err
	}
	result.Hash, err = lowerHash(expr.Hash)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func lowerParams(params []ast.Node) ([]*Expr, error) {
	var result []*Expr
	for _, param := range params {
		val, err := lowerValue(param)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}

func lowerHash(hash *ast.Hash) ([]HashPair, error) {
	if hash == nil {
		return nil, nil
	}
	var result []HashPair
	for _, pair := range hash.Pairs {
		val, err := lowerValue(pair.Val)
		if err != nil {
			return nil, err
		}
		result = append(result, HashPair{Key: pair.Key, Value: val})
	}
	return result, nil
}

func lowerValue(node ast.Node) (*Expr, error) {
	switch typedNode := node.(type) {
	case *ast.PathExpression:
		var parts []string
		if len(typedNode.Parts) > 0 {
			parts = append(parts, typedNode.Parts...)
		}
		return &Expr{Kind: ExprPath, Path: &Path{
			Original: typedNode.Original,
			Parts:    parts,
			Depth:    typedNode.Depth,
			Data:     typedNode.Data,
			Scoped:   typedNode.Scoped,
		}}, nil

	case *ast.StringLiteral:
		return &Expr{Kind: ExprString, Str: typedNode.Value}, nil

	case *ast.NumberLiteral:
		return &Expr{Kind: ExprNumber, Num: typedNode.Value, IsInt: typedNode.IsInt}, nil

	case *ast.BooleanLiteral:
		return &Expr{Kind: ExprBool, Bool: typedNode.Value}, nil

	case *ast.SubExpression:
		return lowerCall(typedNode.Expression)

	case *ast.Expression:
		return lowerStatementExpr(typedNode)

	default:
		return nil, fmt.Errorf("Unexpected expression %T", node)
	}
}

func lowerPartial(partial *ast.PartialStatement) (*Node, error) {
	node := &Node{
		Kind:   NodePartial,
		Line:   partial.Location().Line,
		Indent: partial.Indent,
	}

	switch typedName := partial.Name.(type) {
	case *ast.PathExpression:
		node.PartialName = typedName.Original
	case *ast.StringLiteral:
		node.PartialName = typedName.Value
	case *ast.NumberLiteral:
		node.PartialName = formatNumber(typedName.Value, typedName.IsInt)
	case *ast.BooleanLiteral:
		node.PartialName = strconv.FormatBool(typedName.Value)
	default:
		expr, err := lowerValue(partial.Name)
		if err != nil {
			return nil, err
		}
		node.PartialExpr = expr
	}

	var err error

	node.Params, err = lowerParams(partial.Params)
	if err != nil {
		return nil, err
	}
	node.Hash, err = lowerHash(partial.Hash)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func formatNumber(num float64, isInt bool) string {
	if isInt {
		return strconv.FormatInt(int64(num), 10)
	}
	return strconv.FormatFloat(num, 'f', -1, 64)
}
