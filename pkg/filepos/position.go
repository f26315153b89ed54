// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
)

// Position is a line within a named template source.
// Line is 1 based; 0 marks an unknown line.
type Position struct {
	File string
	Line int
}

func Unknown(file string) Position { return Position{File: file} }

func At(file string, line int) Position {
	if line <= 0 {
		panic(fmt.Sprintf("Expected line to be 1 based, but was %d", line))
	}
	return Position{File: file, Line: line}
}

func (p Position) Known() bool { return p.Line > 0 }

// InFile attaches a template name to a position that was found without one.
func (p Position) InFile(file string) Position {
	p.File = file
	return p
}

// String renders "file:line", "file:?" or just the line.
func (p Position) String() string {
	line := "?"
	if p.Known() {
		line = fmt.Sprintf("%d", p.Line)
	}
	if len(p.File) == 0 {
		return line
	}
	return p.File + ":" + line
}

func (p Position) Describe() string { return "line " + p.String() }
