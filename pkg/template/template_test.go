// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"testing"

	"carvel.dev/hbsmod/pkg/template"
	"github.com/aymerick/raymond/parser"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLower(t *testing.T, src string) *template.Program {
	t.Helper()
	program, err := parser.Parse(src)
	require.NoError(t, err)
	lowered, err := template.Lower(program)
	require.NoError(t, err)
	return lowered
}

func TestLowerContentAndMustaches(t *testing.T) {
	program := mustLower(t, "{{title}}: {{{description}}}{{! note }}")

	require.Equal(t, template.Format, program.Format)
	require.Len(t, program.Body, 3)

	assert.Equal(t, template.NodeMustache, program.Body[0].Kind)
	assert.Equal(t, template.ExprPath, program.Body[0].Expr.Kind)
	assert.Equal(t, "title", program.Body[0].Expr.Path.Original)
	assert.False(t, program.Body[0].Raw)

	assert.Equal(t, template.NodeText, program.Body[1].Kind)
	assert.Equal(t, ": ", program.Body[1].Text)

	assert.True(t, program.Body[2].Raw)
}

func TestLowerCalls(t *testing.T) {
	program := mustLower(t, `{{fmt "a" 2 1.5 true key=(inner x) other=@index}}`)
	require.Len(t, program.Body, 1)

	expr := program.Body[0].Expr
	assert.Equal(t, `(fmt "a" 2 1.5 true key=(inner x) other=@index)`, expr.String())
	assert.Equal(t, "fmt", expr.Name())
	assert.True(t, expr.HasArgs())
	assert.True(t, expr.Params[1].IsInt)
	assert.True(t, expr.Hash[1].Value.Path.Data)
	assert.Equal(t, []string{"index"}, expr.Hash[1].Value.Path.Parts)
}

func TestLowerBlocks(t *testing.T) {
	program := mustLower(t, "{{#each people as |person i|}}{{person.name}}{{else}}none{{/each}}")
	require.Len(t, program.Body, 1)

	block := program.Body[0]
	assert.Equal(t, template.NodeBlock, block.Kind)
	assert.Equal(t, "(each people)", block.Expr.String())
	assert.Equal(t, []string{"person", "i"}, block.Program.BlockParams)
	assert.Equal(t, "none", block.Inverse.Body[0].Text)
	assert.Empty(t, block.Program.Format)
}

func TestLowerPartials(t *testing.T) {
	program := mustLower(t, `{{> card person role="admin"}}{{> (pick kind)}}`)
	require.Len(t, program.Body, 2)

	static := program.Body[0]
	assert.Equal(t, "card", static.PartialName)
	assert.Nil(t, static.PartialExpr)
	assert.Equal(t, "person", static.Params[0].Path.Original)
	assert.Equal(t, "role", static.Hash[0].Key)

	dynamic := program.Body[1]
	assert.Empty(t, dynamic.PartialName)
	assert.Equal(t, "(pick kind)", dynamic.PartialExpr.String())
}

func TestMarshalRoundTrip(t *testing.T) {
	program := mustLower(t, "<b>{{#if ok}}{{> p x=1}}{{else}}{{y \"&\"}}{{/if}}</b>")

	payload, err := template.Marshal(program)
	require.NoError(t, err)
	assert.Contains(t, payload, `"format":"1.0.0"`)
	assert.Contains(t, payload, `<b>`)

	again, err := template.Marshal(program)
	require.NoError(t, err)
	assert.Equal(t, payload, again)

	decoded, err := template.Unmarshal(payload)
	require.NoError(t, err)
	if diff := cmp.Diff(program, decoded); diff != "" {
		t.Fatalf("decoded program mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRequiresFormat(t *testing.T) {
	_, err := template.Unmarshal(`{"body":[]}`)
	require.EqualError(t, err, "Unmarshaling template: expected format version to be set")

	_, err = template.Unmarshal(`{`)
	require.Error(t, err)
}
