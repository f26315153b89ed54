// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"sort"

	"github.com/k14s/starlark-go/starlark"
)

type GoValueToStarlarkValueConversion interface {
	AsStarlarkValue() starlark.Value
}

type GoValue struct {
	val interface{}
}

func NewGoValue(val interface{}) GoValue {
	return GoValue{val}
}

// AsStarlarkValue converts plain Go data (as produced by JSON/YAML decoders)
// into Starlark values. Go maps are unordered, so their keys are sorted.
func (e GoValue) AsStarlarkValue() (starlark.Value, error) {
	return e.asStarlarkValue(e.val)
}

func (e GoValue) asStarlarkValue(val interface{}) (starlark.Value, error) {
	if obj, ok := val.(GoValueToStarlarkValueConversion); ok {
		return obj.AsStarlarkValue(), nil
	}

	switch typedVal := val.(type) {
	case nil:
		return starlark.None, nil

	case starlark.Value:
		return typedVal, nil

	case bool:
		return starlark.Bool(typedVal), nil

	case string:
		return starlark.String(typedVal), nil

	case int:
		return starlark.MakeInt(typedVal), nil

	case int64:
		return starlark.MakeInt64(typedVal), nil

	case uint64:
		return starlark.MakeUint64(typedVal), nil

	case float64:
		return starlark.Float(typedVal), nil

	case map[string]interface{}:
		keys := make([]string, 0, len(typedVal))
		for k := range typedVal {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		result := starlark.NewDict(len(keys))
		for _, k := range keys {
			v, err := e.asStarlarkValue(typedVal[k])
			if err != nil {
				return nil, err
			}
			if err := result.SetKey(starlark.String(k), v); err != nil {
				return nil, err
			}
		}
		return result, nil

	case map[interface{}]interface{}:
		converted := map[string]interface{}{}
		for k, v := range typedVal {
			converted[fmt.Sprintf("%v", k)] = v
		}
		return e.asStarlarkValue(converted)

	case []interface{}:
		items := make([]starlark.Value, 0, len(typedVal))
		for _, v := range typedVal {
			item, err := e.asStarlarkValue(v)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return starlark.NewList(items), nil

	case []string:
		items := make([]starlark.Value, 0, len(typedVal))
		for _, v := range typedVal {
			items = append(items, starlark.String(v))
		}
		return starlark.NewList(items), nil

	default:
		return nil, fmt.Errorf("unknown type %T for conversion to starlark value", val)
	}
}
