// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package compile implements the "compile" and "render" commands.

Compile options are gathered from an optional TOML options file, a loader
style query string and individual flags, in that order of precedence (flags
win).
*/
package compile
