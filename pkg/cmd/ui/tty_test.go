// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui_test

import (
	"bytes"
	"testing"

	"carvel.dev/hbsmod/pkg/cmd/ui"
	"github.com/stretchr/testify/require"
)

func TestTTYDebugIsGated(t *testing.T) {
	var stdout, stderr bytes.Buffer

	quiet := ui.NewCustomWriterTTY(false, &stdout, &stderr)
	quiet.Debugf("skipped %s\n", "x")
	quiet.Printf("out\n")
	quiet.Warnf("warn\n")
	require.Equal(t, "out\n", stdout.String())
	require.Equal(t, "warn\n", stderr.String())

	stderr.Reset()
	loud := ui.NewCustomWriterTTY(true, &stdout, &stderr)
	loud.Debugf("skipped %s\n", "x")
	require.Equal(t, "skipped x\n", stderr.String())

	_, err := loud.DebugWriter().Write([]byte("more"))
	require.NoError(t, err)
	require.Equal(t, "skipped x\nmore", stderr.String())
}

func TestRecorder(t *testing.T) {
	rec := &ui.Recorder{}
	rec.Printf("out %d\n", 1)
	rec.Warnf("warn\n")
	rec.Debugf("a: %s\n", "x")
	_, err := rec.DebugWriter().Write([]byte("b\n"))
	require.NoError(t, err)

	require.Equal(t, []string{"out 1\n"}, rec.Out)
	require.Equal(t, []string{"warn\n"}, rec.Warn)
	require.Equal(t, "a: x\nb\n", rec.DebugText())
}

func TestNoopUIDiscards(t *testing.T) {
	noop := ui.NewNoopUI()
	noop.Printf("x")
	noop.Debugf("y")
	n, err := noop.DebugWriter().Write([]byte("zz"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
