// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package runtime is the default runtime loaded by generated template modules.

It is exposed to Starlark as a module named "runtime":

	template(payload)             decode an inline compiled template
	compile(source)               parse template source at load time
	execute(tpl, data, options)   render tpl against data
	safe(str)                     mark str as already escaped
	escape(str)                   HTML-escape str
	version                       runtime version
	format                        newest template format understood

execute reads helpers, partials and extra @data variables from its options
argument only. The runtime itself keeps no registry.
*/
package runtime
