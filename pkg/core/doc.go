// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package core holds the glue between Go values and Starlark values used by the
runtime and the workspace: conversions in both directions, keyword argument
helpers and an error wrapper for Go-implemented builtins.
*/
package core
