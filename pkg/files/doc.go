// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files provides primitives for enumerating and loading data from
file or file-like Sources and for writing generated modules to filesystem
files and directories.

Files are handled according to their Type: templates are compiled, Starlark
files are evaluated as helper modules and data files feed render calls.
*/
package files
