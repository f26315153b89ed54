// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package scan enumerates the helpers and partials a parsed Handlebars
template refers to.

Two namespaces are reported independently, each deduplicated by exact name
and ordered by first appearance in document order. Built-in control helpers
(if, unless, each, with, lookup, log) are language features and never show up.
Partials whose name is computed by a sub-expression cannot be known ahead of
time; they are listed as Skipped instead.
*/
package scan
