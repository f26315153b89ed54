// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/k14s/starlark-go/starlark"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Stringify renders a value the way it appears in template output.
// None renders empty, lists are comma separated and mappings render
// as an opaque marker.
func Stringify(val starlark.Value) string {
	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return ""
	case starlark.String:
		return string(typedVal)
	case SafeString:
		return string(typedVal)
	case starlark.Bool:
		if typedVal {
			return "true"
		}
		return "false"
	case starlark.Int:
		return typedVal.String()
	case starlark.Float:
		return formatFloat(float64(typedVal))
	case *starlark.List:
		return joinIterable(typedVal)
	case starlark.Tuple:
		return joinIterable(typedVal)
	case starlark.IterableMapping, starlark.HasAttrs:
		return "[object Object]"
	default:
		return typedVal.String()
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinIterable(iterable starlark.Iterable) string {
	iter := iterable.Iterate()
	defer iter.Done()

	var parts []string
	var x starlark.Value
	for iter.Next(&x) {
		parts = append(parts, Stringify(x))
	}
	return strings.Join(parts, ",")
}

// IsEmpty reports values that select the inverse branch of a block.
func IsEmpty(val starlark.Value, includeZero bool) bool {
	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return true
	case starlark.Bool:
		return !bool(typedVal)
	case starlark.String:
		return len(typedVal) == 0
	case SafeString:
		return len(typedVal) == 0
	case starlark.Int:
		return !includeZero && typedVal.Sign() == 0
	case starlark.Float:
		return !includeZero && typedVal == 0
	case *starlark.List:
		return typedVal.Len() == 0
	case starlark.Tuple:
		return typedVal.Len() == 0
	default:
		return false
	}
}
