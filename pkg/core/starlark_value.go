// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/k14s/starlark-go/starlark"
)

type StarlarkValueToGoValueConversion interface {
	AsGoValue() interface{}
}

type StarlarkValue struct {
	val starlark.Value
}

func NewStarlarkValue(val starlark.Value) StarlarkValue {
	return StarlarkValue{val}
}

func (e StarlarkValue) AsString() (string, error) {
	if typedVal, ok := e.val.(starlark.String); ok {
		return string(typedVal), nil
	}
	return "", fmt.Errorf("expected starlark.String, but was %s", e.typeName())
}

func (e StarlarkValue) AsBool() (bool, error) {
	if typedVal, ok := e.val.(starlark.Bool); ok {
		return bool(typedVal), nil
	}
	return false, fmt.Errorf("expected starlark.Bool, but was %s", e.typeName())
}

// AsDict treats None as an empty dict.
func (e StarlarkValue) AsDict() (*starlark.Dict, error) {
	switch typedVal := e.val.(type) {
	case nil, starlark.NoneType:
		return starlark.NewDict(0), nil
	case *starlark.Dict:
		return typedVal, nil
	default:
		return nil, fmt.Errorf("expected starlark.Dict, but was %s", e.typeName())
	}
}

// AsGoValue converts to plain Go values: maps become map[string]interface{}
// (non-string keys are formatted with %s) and sequences become []interface{}.
func (e StarlarkValue) AsGoValue() (interface{}, error) {
	return e.asInterface(e.val)
}

func (e StarlarkValue) typeName() string {
	if e.val == nil {
		return "nil"
	}
	return e.val.Type()
}

func (e StarlarkValue) asInterface(val starlark.Value) (interface{}, error) {
	if obj, ok := val.(StarlarkValueToGoValueConversion); ok {
		return obj.AsGoValue(), nil
	}

	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return nil, nil

	case starlark.Bool:
		return bool(typedVal), nil

	case starlark.String:
		return string(typedVal), nil

	case starlark.Int:
		if i1, ok := typedVal.Int64(); ok {
			return i1, nil
		}
		return nil, fmt.Errorf("integer %s does not fit into int64", typedVal.String())

	case starlark.Float:
		return float64(typedVal), nil

	case *starlark.Dict:
		result := map[string]interface{}{}
		for _, item := range typedVal.Items() {
			key := item.Index(0)
			keyStr, ok := starlark.AsString(key)
			if !ok {
				keyStr = key.String()
			}
			v, err := e.asInterface(item.Index(1))
			if err != nil {
				return nil, err
			}
			result[keyStr] = v
		}
		return result, nil

	case starlark.Iterable:
		iter := typedVal.Iterate()
		defer iter.Done()

		result := []interface{}{}
		var x starlark.Value
		for iter.Next(&x) {
			v, err := e.asInterface(x)
			if err != nil {
				return nil, err
			}
			result = append(result, v)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unknown type %s for conversion to go value", val.Type())
	}
}
