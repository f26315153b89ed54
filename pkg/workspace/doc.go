// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package workspace is a small host build system for compiled template modules.

A ModuleLoader serves Starlark load statements: it provides the runtime
module, compiles template files on demand with the loader's options and
evaluates helper modules. RenderFile ties these together to turn a template
file and its data into text.
*/
package workspace
