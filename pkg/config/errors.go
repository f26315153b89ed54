// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
)

// DirNotFoundError reports a configured directory that the host
// could not find.
type DirNotFoundError struct {
	Option string
	Path   string
	Err    error
}

func (e DirNotFoundError) Error() string {
	return fmt.Sprintf("Expected %s directory '%s' to exist: %s", e.Option, e.Path, e.Err)
}

func (e DirNotFoundError) Unwrap() error { return e.Err }
