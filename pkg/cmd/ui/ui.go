// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"io"
)

// UI receives everything hbsmod tells its user.
// Printf carries command output (rendered text, modules); the rest goes
// to stderr. Debugf carries per-template notes such as resolved edges and
// skipped dynamic references.
type UI interface {
	Printf(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	DebugWriter() io.Writer
}
