// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package resolve turns scanned reference names into load() specifiers.

A Rewriter first drops references the runtime serves itself (built-in and
known helpers, ignored namespaces). Remaining names go through a Pipeline of
Strategy values tried left to right; the first strategy that matches decides
the specifier:

	ExplicitPathStrategy  ./x, ../x, a/b  -> unchanged
	SearchDirsStrategy    x               -> /abs/dir/x.ext (first dir, first ext)
	BareNameStrategy      x               -> x

A bare name that matches nothing is not an error here. The host resolves it
when the generated module is loaded.
*/
package resolve
