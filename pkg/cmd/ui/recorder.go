// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"io"
	"strings"
)

// Recorder keeps every message in memory. Embedding hosts use it to surface
// debug notes in their own logs; tests use it to assert on them.
type Recorder struct {
	Out   []string
	Warn  []string
	Debug []string
}

var _ UI = &Recorder{}

func (r *Recorder) Printf(str string, args ...interface{}) {
	r.Out = append(r.Out, fmt.Sprintf(str, args...))
}

func (r *Recorder) Warnf(str string, args ...interface{}) {
	r.Warn = append(r.Warn, fmt.Sprintf(str, args...))
}

func (r *Recorder) Debugf(str string, args ...interface{}) {
	r.Debug = append(r.Debug, fmt.Sprintf(str, args...))
}

func (r *Recorder) DebugWriter() io.Writer { return recorderWriter{r} }

// DebugText joins all debug messages.
func (r *Recorder) DebugText() string { return strings.Join(r.Debug, "") }

type recorderWriter struct{ r *Recorder }

func (w recorderWriter) Write(data []byte) (int, error) {
	w.r.Debug = append(w.r.Debug, string(data))
	return len(data), nil
}
