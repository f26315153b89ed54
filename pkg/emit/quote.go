// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package emit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Quote returns s as a double quoted Starlark string literal.
// Invalid UTF-8 bytes and control characters are written as \x escapes.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&sb, `\x%02x`, s[i])
			i++
			continue
		}

		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteString(s[i : i+size])
			}
		}
		i += size
	}

	sb.WriteByte('"')
	return sb.String()
}
