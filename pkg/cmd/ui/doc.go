// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui provides a thin abstraction over user output (typically, a tty
device). Library packages (compiler, workspace) report debug notes through it
so that embedding programs can silence or capture them.
*/
package ui
