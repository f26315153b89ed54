// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package compiler_test

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"carvel.dev/hbsmod/pkg/cmd/ui"
	"carvel.dev/hbsmod/pkg/compiler"
	"carvel.dev/hbsmod/pkg/config"
	fuzz "github.com/google/gofuzz"
	"github.com/k14s/starlark-go/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T, opts config.Options) *compiler.Compiler {
	cfg, err := config.Resolve(opts, config.DirCheckerFunc(func(string) error { return nil }))
	require.NoError(t, err)
	return compiler.NewCompiler(cfg, nil, ui.NewNoopUI())
}

func TestCompileLoadsOnlyRuntimeForPlainTemplates(t *testing.T) {
	module, err := newCompiler(t, config.Options{}).Compile("simple.hbs", "<h1>{{title}}</h1>{{#if x}}{{y}}{{/if}}")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(module, "load("))
	assert.Contains(t, module, `_hbs_template = _hbs_runtime.template(`)
}

func TestCompileDoesNotLoadContextPaths(t *testing.T) {
	module, err := newCompiler(t, config.Options{}).Compile("paths.hbs",
		"{{foo.bar x}} {{this.baz y}} {{../up z}}{{#each items as |item|}}{{item.label 'x'}}{{/each}}")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(module, "load("))
}

func TestCompileRewritesHelpersBeforePartials(t *testing.T) {
	module, err := newCompiler(t, config.Options{}).Compile("x.hbs", "{{> card}}{{fmt (inner a) b=1}}")
	require.NoError(t, err)

	loads := []string{}
	for _, line := range strings.Split(module, "\n") {
		if strings.HasPrefix(line, "load(") {
			loads = append(loads, line)
		}
	}

	assert.Equal(t, []string{
		`load("@hbsmod:runtime", _hbs_runtime="runtime")`,
		`load("fmt", _hbs_helper_fmt="helper")`,
		`load("inner", _hbs_helper_inner="helper")`,
		`load("card", _hbs_partial_card="render")`,
	}, loads)
}

func TestCompileHonorsIgnoreOptions(t *testing.T) {
	yes := true
	module, err := newCompiler(t, config.Options{IgnoreHelpers: &yes, IgnorePartials: &yes}).
		Compile("x.hbs", "{{> card}}{{fmt a}}")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(module, "load("))
}

func TestCompileDeferredModeEmbedsSource(t *testing.T) {
	runtimeName := "my/runtime.star"
	no := false

	module, err := newCompiler(t, config.Options{Runtime: &runtimeName, InlineRequires: &no}).
		Compile("x.hbs", "{{title}}\n")
	require.NoError(t, err)

	assert.Contains(t, module, `load("my/runtime.star", _hbs_runtime="runtime")`)
	assert.Contains(t, module, `_hbs_template = _hbs_runtime.compile("{{title}}\n")`)
}

func TestCompileLogsDynamicPartials(t *testing.T) {
	cfg, err := config.Resolve(config.Options{}, nil)
	require.NoError(t, err)

	recorder := &ui.Recorder{}

	module, err := compiler.NewCompiler(cfg, nil, recorder).Compile("dyn.hbs", "{{> (pick) }}")
	require.NoError(t, err)

	assert.Contains(t, module, `load("pick", _hbs_helper_pick="helper")`)
	assert.NotContains(t, module, "_hbs_partial_")

	joined := recorder.DebugText()
	assert.Contains(t, joined, "dyn.hbs: skipping dynamic partial reference")
	assert.Contains(t, joined, `dyn.hbs: helper "pick" -> "pick"`)
}

func TestCompileReportsParseErrors(t *testing.T) {
	module, err := newCompiler(t, config.Options{}).Compile("broken.hbs", "line one\n{{#if x}}\n{{/each}}\n")
	require.Error(t, err)
	assert.Equal(t, "", module)

	var compileErr compiler.Error
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, compiler.ParseError, compileErr.Kind)
	assert.Equal(t, "broken.hbs", compileErr.Template)
	assert.True(t, strings.HasPrefix(err.Error(), "Parsing template 'broken.hbs' (line broken.hbs:"))
}

func TestConfigErrorMessage(t *testing.T) {
	err := compiler.NewConfigError(fmt.Errorf("bad option"))
	assert.Equal(t, "Configuring template compilation: bad option", err.Error())
	assert.Equal(t, "config error", err.Kind.String())
}

func TestCompileIsDeterministic(t *testing.T) {
	fuzzer := fuzz.New().RandSource(randSource(t)).NilChance(0).NumElements(1, 6)
	comp := newCompiler(t, config.Options{})

	for i := 0; i < 100; i++ {
		var names []string
		fuzzer.Fuzz(&names)

		var sb strings.Builder
		for j, name := range names {
			name = sanitizeName(name, j)
			fmt.Fprintf(&sb, "{{%s x}}{{> %s}}\n", name, name)
		}
		source := sb.String()

		first, err := comp.Compile("fuzz.hbs", source)
		require.NoError(t, err, "source: %s", source)

		second, err := comp.Compile("fuzz.hbs", source)
		require.NoError(t, err)
		require.Equal(t, first, second)

		_, err = syntax.Parse("fuzz.star", first, 0)
		require.NoError(t, err, "module:\n%s", first)
	}
}

// sanitizeName keeps generated names within Handlebars identifier syntax
func sanitizeName(name string, idx int) string {
	var sb strings.Builder
	sb.WriteString("h")
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			sb.WriteRune(r)
		}
	}
	fmt.Fprintf(&sb, "%d", idx)
	return sb.String()
}

func randSource(t *testing.T) rand.Source {
	var seed int64
	if os.Getenv("HBSMOD_SEED") == "" {
		seed = time.Now().UnixNano()
	} else {
		envSeed, err := strconv.Atoi(os.Getenv("HBSMOD_SEED"))
		require.NoError(t, err)
		seed = int64(envSeed)
	}

	t.Log(fmt.Sprintf("Seed used was: [%v]. To reproduce this test failure, re-run the test with `export HBSMOD_SEED=%v`", seed, seed))

	return rand.NewSource(seed)
}
