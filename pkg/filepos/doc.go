// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos locates things in template sources for error messages and
debug notes: a template name and a 1 based line number. The zero Position
points nowhere; raymond does not always report a line.
*/
package filepos
