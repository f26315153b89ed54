// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package emit writes the Starlark source of a compiled template module.

A module loads the runtime and one module per dependency edge, holds the
template payload in a private global and exports render(data, options=None).
render builds fresh helper and partial registries on every call, so a loaded
module never carries mutable state. Output is a pure function of its input.
*/
package emit
