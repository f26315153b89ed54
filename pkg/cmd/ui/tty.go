// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"io"
	"os"
)

type TTY struct {
	out   io.Writer
	err   io.Writer
	debug io.Writer
}

var _ UI = TTY{}

// NewTTY writes to the process' stdout and stderr. Debug notes are dropped
// unless debug is set.
func NewTTY(debug bool) TTY {
	return NewCustomWriterTTY(debug, nil, nil)
}

// NewNoopUI discards everything; used when hbsmod is embedded as a library.
func NewNoopUI() TTY {
	return TTY{io.Discard, io.Discard, io.Discard}
}

// NewCustomWriterTTY is NewTTY with replaceable writers. A nil writer
// falls back to the process' stream.
func NewCustomWriterTTY(debug bool, stdout, stderr io.Writer) TTY {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	t := TTY{out: stdout, err: stderr, debug: io.Discard}
	if debug {
		t.debug = stderr
	}
	return t
}

func (t TTY) Printf(str string, args ...interface{}) { fmt.Fprintf(t.out, str, args...) }
func (t TTY) Warnf(str string, args ...interface{})  { fmt.Fprintf(t.err, str, args...) }
func (t TTY) Debugf(str string, args ...interface{}) { fmt.Fprintf(t.debug, str, args...) }
func (t TTY) DebugWriter() io.Writer                 { return t.debug }
