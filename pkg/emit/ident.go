// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"fmt"
	"strings"
)

// Identifier derives a Starlark identifier fragment from a reference name.
func Identifier(name string) string {
	var sb strings.Builder
	lastUnderscore := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	result := strings.Trim(sb.String(), "_")
	if len(result) == 0 {
		return "ref"
	}
	return result
}

// Identifiers derives identifiers for names in order. A name whose
// identifier is already taken gets the first free _2, _3, ... suffix.
func Identifiers(names []string) []string {
	taken := map[string]struct{}{}
	result := make([]string, 0, len(names))

	for _, name := range names {
		base := Identifier(name)
		ident := base
		for i := 2; ; i++ {
			if _, found := taken[ident]; !found {
				break
			}
			ident = fmt.Sprintf("%s_%d", base, i)
		}
		taken[ident] = struct{}{}
		result = append(result, ident)
	}
	return result
}
