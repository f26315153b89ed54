// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package compiler turns Handlebars template source into the text of a
Starlark module.

	source -> parse (raymond) -> scan -> rewrite -> lower -> emit

A template that fails to parse produces a ParseError and no output. Missing
configuration directories are reported by the caller as ConfigError before
a Compiler exists. References that cannot be determined statically are
skipped and only mentioned in debug output.
*/
package compiler
