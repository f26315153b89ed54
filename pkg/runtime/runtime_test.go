// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime_test

import (
	"strings"
	"testing"

	"carvel.dev/hbsmod/pkg/runtime"
	"carvel.dev/hbsmod/pkg/template"
	"github.com/k14s/starlark-go/resolve"
	"github.com/k14s/starlark-go/starlark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	resolve.AllowFloat = true
}

// evalStar runs src with the runtime module predeclared and returns
// its globals.
func evalStar(t *testing.T, thread *starlark.Thread, src string) starlark.StringDict {
	t.Helper()
	if thread == nil {
		thread = &starlark.Thread{Name: "test"}
	}
	globals, err := starlark.ExecFile(thread, "test.star", src, runtime.API)
	require.NoError(t, err)
	return globals
}

func render(t *testing.T, tplSrc string, setup string) (string, error) {
	t.Helper()

	tpl, err := runtime.Compile("test", tplSrc)
	require.NoError(t, err)

	thread := &starlark.Thread{Name: "test"}
	globals := evalStar(t, thread, setup)

	var opts runtime.ExecuteOpts
	if helpers, ok := globals["helpers"].(*starlark.Dict); ok {
		opts.Helpers = helpers
	}
	if partials, ok := globals["partials"].(*starlark.Dict); ok {
		opts.Partials = partials
	}
	if data, ok := globals["data"].(*starlark.Dict); ok {
		opts.Data = data
	}

	return runtime.Execute(thread, tpl, globals["ctx"], opts)
}

func expectRender(t *testing.T, tplSrc, setup, expected string) {
	t.Helper()
	out, err := render(t, tplSrc, setup)
	require.NoError(t, err)
	assert.Equal(t, expected, out)
}

func TestRenderSimple(t *testing.T) {
	expectRender(t, "{{title}}: {{description}}",
		`ctx = {"title": "T", "description": "D"}`,
		"T: D")
}

func TestRenderEscaping(t *testing.T) {
	expectRender(t, "{{v}}|{{{v}}}|{{&v}}|{{s}}",
		`
ctx = {"v": "<a href='x'>&`+"`"+`=</a>", "s": runtime.safe("<b>")}
`,
		"&lt;a href&#x3D;&#x27;x&#x27;&gt;&amp;&#x60;&#x3D;&lt;/a&gt;|<a href='x'>&`=</a>|<a href='x'>&`=</a>|<b>")
}

func TestRenderValues(t *testing.T) {
	expectRender(t, "[{{missing}}][{{n}}][{{f}}][{{whole}}][{{b}}][{{list}}][{{obj}}][{{list.length}}][{{list.[1]}}]",
		`ctx = {"n": 3, "f": 1.5, "whole": 2.0, "b": False, "list": ["x", "y"], "obj": {"k": 1}}`,
		"[][3][1.5][2][false][x,y][[object Object]][2][y]")
}

func TestRenderPaths(t *testing.T) {
	expectRender(t, "{{person.name.first}} {{this.title}} {{#with person}}{{name.last}} of {{../title}}{{/with}}",
		`ctx = {"title": "T", "person": {"name": {"first": "Ada", "last": "Lovelace"}}}`,
		"Ada T Lovelace of T")
}

func TestRenderHelpers(t *testing.T) {
	setup := `
def title(text):
    return "Title: " + text

def fmt(a, b, options):
    return "%s-%s-%s-%s" % (a, b, options.hash["sep"], options.name)

def star(*args):
    return len(args)

def now():
    return "<now>"

helpers = {"title": title, "./description": title, "fmt": fmt, "star": star, "now": now}
ctx = {"title": "T", "x": 1}
`
	expectRender(t, `{{title title}}|{{./description "d"}}|{{fmt x 2 sep="/"}}|{{star 1 2}}|{{now}}|{{{now}}}|{{title (title "nested")}}`,
		setup,
		"Title: T|Title: d|1-2-/-fmt|3|&lt;now&gt;|<now>|Title: Title: nested")
}

func TestRenderMissingHelper(t *testing.T) {
	_, err := render(t, "{{nope x}}", `ctx = {}`)
	require.EqualError(t, err, `Missing helper: "nope"`)

	_, err = render(t, "{{#nope x}}{{/nope}}", `ctx = {}`)
	require.EqualError(t, err, `Missing helper: "nope"`)
}

func TestRenderBlockHelpers(t *testing.T) {
	setup := `
def bold(options):
    return "<b>" + options.fn() + "</b>"

def list(items, options):
    if not items:
        return options.inverse()
    return "".join([options.fn(item, data={"n": i}) for i, item in enumerate(items)])

helpers = {"bold": bold, "list": list}
ctx = {"name": "<x>", "people": [{"n": "a"}, {"n": "b"}], "none": []}
`
	expectRender(t, "{{#bold}}{{name}}{{/bold}}|{{#list people}}{{n}}{{@n}};{{/list}}|{{#list none}}x{{else}}empty{{/list}}",
		setup,
		"<b>&lt;x&gt;</b>|a0;b1;|empty")
}

func TestRenderBuiltins(t *testing.T) {
	setup := `
ctx = {
  "yes": True, "no": False, "zero": 0,
  "items": ["a", "b", "c"],
  "map": {"k1": "v1", "k2": "v2"},
  "person": {"name": "Ada"},
  "key": "name",
}
`
	tests := []struct {
		tpl      string
		expected string
	}{
		{"{{#if yes}}Y{{else}}N{{/if}}", "Y"},
		{"{{#if no}}Y{{else}}N{{/if}}", "N"},
		{"{{#if zero}}Y{{else}}N{{/if}}", "N"},
		{"{{#if zero includeZero=true}}Y{{else}}N{{/if}}", "Y"},
		{"{{#if no}}A{{else if yes}}B{{else}}C{{/if}}", "B"},
		{"{{#unless no}}U{{/unless}}", "U"},
		{"{{#each items}}{{@index}}{{this}}{{#if @first}}F{{/if}}{{#if @last}}L{{/if}},{{/each}}", "0aF,1b,2cL,"},
		{"{{#each map}}{{@key}}={{this}};{{/each}}", "k1=v1;k2=v2;"},
		{"{{#each missing}}x{{else}}nothing{{/each}}", "nothing"},
		{"{{#each items as |item i|}}{{i}}:{{item}} {{/each}}", "0:a 1:b 2:c "},
		{"{{#each items}}{{#each ../items}}{{/each}}{{@root.person.name}}{{/each}}", "AdaAdaAda"},
		{"{{#with person}}{{name}}{{/with}}", "Ada"},
		{"{{#with person as |p|}}{{p.name}}{{/with}}", "Ada"},
		{"{{#with missing}}x{{else}}no person{{/with}}", "no person"},
		{"{{lookup person key}}|{{lookup items 1}}", "Ada|b"},
		{"{{#person}}{{name}}{{/person}}", "Ada"},
		{"{{#items}}{{.}}{{/items}}", "abc"},
		{"{{#yes}}shown{{/yes}}{{#no}}hidden{{/no}}", "shown"},
		{"{{^no}}inverted{{/no}}{{^yes}}hidden{{/yes}}", "inverted"},
	}

	for _, test := range tests {
		t.Run(test.tpl, func(t *testing.T) {
			expectRender(t, test.tpl, setup, test.expected)
		})
	}
}

func TestRenderBuiltinsCanBeOverridden(t *testing.T) {
	setup := `
def my_if(cond, options):
    return "custom"

helpers = {"if": my_if}
ctx = {}
`
	expectRender(t, "{{#if x}}y{{/if}}", setup, "custom")
}

func TestRenderLog(t *testing.T) {
	tpl, err := runtime.Compile("log", `{{log "hello" who}}{{log user (safe-name) 3}}done`)
	require.NoError(t, err)

	var printed []string
	thread := &starlark.Thread{Print: func(_ *starlark.Thread, msg string) { printed = append(printed, msg) }}

	user := starlark.NewDict(2)
	require.NoError(t, user.SetKey(starlark.String("name"), starlark.String("ann")))
	require.NoError(t, user.SetKey(starlark.String("tags"), starlark.NewList([]starlark.Value{starlark.String("a")})))

	ctx := starlark.NewDict(2)
	require.NoError(t, ctx.SetKey(starlark.String("who"), starlark.String("world")))
	require.NoError(t, ctx.SetKey(starlark.String("user"), user))

	helpers := starlark.NewDict(1)
	require.NoError(t, helpers.SetKey(starlark.String("safe-name"), starlark.NewBuiltin("safe-name",
		func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
			return runtime.SafeString("<b>"), nil
		})))

	out, err := runtime.Execute(thread, tpl, ctx, runtime.ExecuteOpts{Helpers: helpers})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"hello world", `{"name":"ann","tags":["a"]} <b> 3`}, printed)
}

func TestRenderPartials(t *testing.T) {
	setup := `
def card(ctx, options):
    return "[card " + ctx["name"] + " " + str(len(options["helpers"])) + "]"

def pick(kind):
    return kind + "-partial"

helpers = {"pick": pick}
partials = {
  "card": card,
  "greeting": "Hello {{name}}{{#if role}} ({{role}}){{/if}}",
  "list-partial": "list",
}
ctx = {"name": "Ada", "other": {"name": "Bob"}, "kind": "list"}
`
	expectRender(t, `{{> card}}|{{> greeting}}|{{> greeting other}}|{{> greeting role="admin"}}|{{> (pick kind)}}`,
		setup,
		"[card Ada 1]|Hello Ada|Hello Bob|Hello Ada (admin)|list")
}

func TestRenderMissingPartial(t *testing.T) {
	_, err := render(t, "{{> nope}}", `ctx = {}`)
	require.EqualError(t, err, "The partial nope could not be found")
}

func TestRenderPartialIndent(t *testing.T) {
	expectRender(t, "a\n  {{> p}}\nb",
		`
partials = {"p": "x\ny\n"}
ctx = {}
`,
		"a\n  x\n  y\nb")
}

func TestRenderRecursivePartialIsBounded(t *testing.T) {
	_, err := render(t, "{{> self}}", `
partials = {"self": "{{> self}}"}
ctx = {}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded maximum partial depth")
}

func TestRenderDataOption(t *testing.T) {
	expectRender(t, "{{@env}}/{{@root.x}}",
		`
data = {"env": "prod"}
ctx = {"x": 1}
`,
		"prod/1")
}

func TestStarlarkAPI(t *testing.T) {
	tpl, err := runtime.Compile("api", "{{greet name}}")
	require.NoError(t, err)

	payload, err := template.Marshal(tpl.Program())
	require.NoError(t, err)

	thread := &starlark.Thread{Name: "api.hbs"}

	globals, err := starlark.ExecFile(thread, "api.star", `
def greet(name):
    return runtime.safe("<i>" + runtime.escape(name) + "</i>")

inline = runtime.template(PAYLOAD)
deferred = runtime.compile("{{greet name}}!")
opts = {"helpers": {"greet": greet}}

out1 = runtime.execute(inline, {"name": "<Ada>"}, opts)
out2 = runtime.execute(deferred, data={"name": "Bob"}, options=opts)
ver = runtime.version
fmt = runtime.format
`, starlark.StringDict{"runtime": runtime.API["runtime"], "PAYLOAD": starlark.String(payload)})
	require.NoError(t, err)

	assert.Equal(t, starlark.String("<i>&lt;Ada&gt;</i>"), globals["out1"])
	assert.Equal(t, starlark.String("<i>Bob</i>!"), globals["out2"])
	assert.Equal(t, starlark.String(template.Format), globals["fmt"])
	assert.Contains(t, globals["inline"].String(), "api.hbs")
}

func TestStarlarkAPIErrors(t *testing.T) {
	_, err := starlark.ExecFile(&starlark.Thread{}, "err.star",
		`runtime.execute("not a template", {})`, runtime.API)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected template to be hbsmod.template, but was string")

	_, err = starlark.ExecFile(&starlark.Thread{}, "err.star",
		`runtime.execute(runtime.compile("x"), {}, {"helpers": []})`, runtime.API)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "options.helpers: expected starlark.Dict, but was list")

	_, err = starlark.ExecFile(&starlark.Thread{}, "err.star", `runtime.compile("{{#if}}")`, runtime.API)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime.compile")
}

func TestDecodeChecksFormat(t *testing.T) {
	_, err := runtime.Decode("t", `{"format":"1.4.0","body":[{"kind":"text","text":"ok"}]}`)
	require.NoError(t, err)

	_, err = runtime.Decode("t", `{"format":"2.0.0","body":[]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Template format 2.0.0 is not supported by this runtime")

	_, err = runtime.Decode("t", `{"format":"banana","body":[]}`)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Parsing template format version 'banana'"))
}

func TestEscapeAndStringify(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#x27;&#x60;&#x3D;", runtime.Escape("&<>\"'`="))
	assert.Equal(t, "", runtime.Stringify(starlark.None))
	assert.Equal(t, "1e+21", runtime.Stringify(starlark.Float(1e21)))
	assert.True(t, runtime.IsEmpty(starlark.NewList(nil), false))
	assert.False(t, runtime.IsEmpty(starlark.NewDict(0), false))
	assert.False(t, runtime.IsEmpty(starlark.MakeInt(0), true))
}

func TestRenderContextPathsWithArguments(t *testing.T) {
	expectRender(t, `{{#each items as |item|}}[{{item.label 'x'}}|{{item 'y'}}]{{/each}}{{user.greet "ann"}}`,
		`
def greet(name):
    return "hi " + name

ctx = {"items": [{"label": "a"}], "user": {"greet": greet}}
`,
		"[a|[object Object]]hi ann")

	expectRender(t, `{{#each items as |item|}}{{item.label 'x'}}{{/each}}`, `ctx = {}`, "")

	_, err := render(t, `{{user.name "x"}}`, `ctx = {"user": {"name": "n"}}`)
	require.EqualError(t, err, `Missing helper: "user.name"`)
}
