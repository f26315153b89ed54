// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"regexp"
	"strconv"

	"carvel.dev/hbsmod/pkg/filepos"
)

type ErrorKind int

const (
	ConfigError ErrorKind = iota
	ParseError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigError:
		return "config error"
	case ParseError:
		return "parse error"
	default:
		return fmt.Sprintf("error(%d)", int(k))
	}
}

// Error is a fatal compile error. No module text accompanies it.
type Error struct {
	Kind     ErrorKind
	Template string
	Position filepos.Position
	Err      error
}

func (e Error) Error() string {
	switch e.Kind {
	case ParseError:
		return fmt.Sprintf("Parsing template '%s' (%s): %s", e.Template, e.Position.Describe(), e.Err)
	default:
		return fmt.Sprintf("Configuring template compilation: %s", e.Err)
	}
}

func (e Error) Unwrap() error { return e.Err }

func NewConfigError(err error) Error {
	return Error{Kind: ConfigError, Err: err}
}

var parseErrLineRegexp = regexp.MustCompile(`(?i)\bline (\d+)`)

func newParseError(name string, err error) Error {
	pos := filepos.Unknown(name)
	if match := parseErrLineRegexp.FindStringSubmatch(err.Error()); match != nil {
		if line, convErr := strconv.Atoi(match[1]); convErr == nil && line > 0 {
			pos = filepos.At(name, line)
		}
	}
	return Error{Kind: ParseError, Template: name, Position: pos, Err: err}
}
