// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of hbsmod.

hbsmod compiles Handlebars templates into Starlark modules. Every helper and
partial a template references becomes a load statement of the generated
module, so the host's module system resolves, caches and tracks them like any
other dependency.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

# Entry Point

hbsmod is built as a command-line tool:

	./cmd/hbsmod               // a command-line tool

# Commands

	(1) => pkg/cmd => (5)
	(1) => pkg/cmd/compile => (5)

# Hosts

Build systems drive compilation one template at a time through the loader.
The workspace is a small build system of its own: it serves load statements,
compiles templates on demand and renders them.

	(1) => pkg/loader => (4)
	(2) => pkg/workspace => (8)
	(2) => pkg/files => (1)

# Compilation

A template flows through parse (raymond) -> scan -> rewrite -> lower -> emit.

	(3) => pkg/compiler => (7)
	(5) => pkg/config => (0)
	(3) => pkg/scan => (1)
	(4) => pkg/resolve => (2)
	(3) => pkg/template => (0)
	(2) => pkg/emit => (2)

# Runtime

The runtime is the Starlark module every generated module loads. It decodes
or compiles the template and renders it against data, helpers and partials.

	(2) => pkg/runtime => (3)
	(2) => pkg/core => (0)

# Utilities

	(6) => pkg/cmd/ui => (0)
	(2) => pkg/filepos => (0)
	(3) => pkg/version => (0)
*/
package pkg
