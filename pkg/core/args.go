// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
)

// CheckArgNames fails if kwargs contains a name outside of allowed.
func CheckArgNames(kwargs []starlark.Tuple, allowed map[string]struct{}) error {
	for _, kwarg := range kwargs {
		name, err := NewStarlarkValue(kwarg.Index(0)).AsString()
		if err != nil {
			return err
		}
		if _, found := allowed[name]; !found {
			return fmt.Errorf("invalid argument name: %s", name)
		}
	}
	return nil
}

// KwargsAsDict collects keyword arguments into a dict, keeping call order.
func KwargsAsDict(kwargs []starlark.Tuple) (*starlark.Dict, error) {
	result := starlark.NewDict(len(kwargs))
	for _, kwarg := range kwargs {
		if err := result.SetKey(kwarg.Index(0), kwarg.Index(1)); err != nil {
			return nil, err
		}
	}
	return result, nil
}
