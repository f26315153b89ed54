// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	binaryPath  = "../../hbsmod"
	testdataDir = "../../pkg/workspace/testdata"
)

func TestCompileToStdout(t *testing.T) {
	out := runHbsmod(t, "compile", "-f", filepath.Join(testdataDir, "with-helpers.hbs"))

	assert.True(t, strings.HasPrefix(out, "# Code generated by hbsmod from with-helpers.hbs. DO NOT EDIT.\n"))
	assert.Contains(t, out, `load("title", _hbs_helper_title="helper")`)
	assert.Contains(t, out, `load("./description", _hbs_helper_description="helper")`)
}

func TestCompileDirectory(t *testing.T) {
	outDir := t.TempDir()

	runHbsmod(t, "compile", "-f", testdataDir, "-R", "-o", outDir)

	for _, name := range []string{"simple.star", "partial.star", "with-partials.star"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err)
	}
}

func TestRenderWithHelperDirs(t *testing.T) {
	out := runHbsmod(t, "render",
		"-f", filepath.Join(testdataDir, "with-dir-helpers.hbs"),
		"--query", "helperDirs[]="+filepath.Join(testdataDir, "helpers"),
		"-v", "image=http://example.com/a")

	assert.Equal(t, "<img src=\"http://example.com/a/64\">\n", out)
}

func TestErrorsAreReported(t *testing.T) {
	command := exec.Command(binaryPath, "compile", "-f", filepath.Join(testdataDir, "simple.hbs"), "--helper-dir", "/does-not-exist")
	stdErr := bytes.NewBufferString("")
	command.Stderr = stdErr

	requireBinary(t)
	err := command.Run()
	require.Error(t, err)
	assert.Contains(t, stdErr.String(), "hbsmod: Error: Configuring template compilation: Expected helper directory '/does-not-exist' to exist")
}

func runHbsmod(t *testing.T, args ...string) string {
	requireBinary(t)

	command := exec.Command(binaryPath, args...)
	stdErr := bytes.NewBufferString("")
	command.Stderr = stdErr

	output, err := command.Output()
	require.NoError(t, err, stdErr.String())

	return string(output)
}

func requireBinary(t *testing.T) {
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("hbsmod binary not built (go build -o hbsmod ./cmd/hbsmod): %s", err)
	}
}
