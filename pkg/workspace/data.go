// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"os"
	"strings"

	"carvel.dev/hbsmod/pkg/core"
	"github.com/k14s/starlark-go/starlark"
	"gopkg.in/yaml.v3"
)

// DecodeData converts a YAML (or JSON) document into Starlark values.
// Mapping keys keep their document order.
func DecodeData(bs []byte) (starlark.Value, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(bs, &doc)
	if err != nil {
		return nil, fmt.Errorf("Unmarshaling data: %s", err)
	}

	if doc.Kind == 0 {
		return starlark.None, nil
	}

	return nodeToStarlark(&doc)
}

func DecodeDataFile(path string) (starlark.Value, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Reading data file '%s': %s", path, err)
	}

	val, err := DecodeData(bs)
	if err != nil {
		return nil, fmt.Errorf("Decoding data file '%s': %s", path, err)
	}
	return val, nil
}

func nodeToStarlark(node *yaml.Node) (starlark.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return starlark.None, nil
		}
		return nodeToStarlark(node.Content[0])

	case yaml.AliasNode:
		return nodeToStarlark(node.Alias)

	case yaml.MappingNode:
		dict := starlark.NewDict(len(node.Content) / 2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, err := nodeToStarlark(node.Content[i])
			if err != nil {
				return nil, err
			}
			val, err := nodeToStarlark(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			err = dict.SetKey(key, val)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", node.Content[i].Line, err)
			}
		}
		return dict, nil

	case yaml.SequenceNode:
		var items []starlark.Value
		for _, child := range node.Content {
			val, err := nodeToStarlark(child)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return starlark.NewList(items), nil

	case yaml.ScalarNode:
		var val interface{}
		err := node.Decode(&val)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s", node.Line, err)
		}
		return core.NewGoValue(val).AsStarlarkValue()

	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node kind %d", node.Line, node.Kind)
	}
}

// SetDataValue applies a 'a.b.c=value' assignment to data. Intermediate
// dicts are created as needed; the value is decoded as YAML.
func SetDataValue(data *starlark.Dict, kv string) error {
	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 || len(pieces[0]) == 0 {
		return fmt.Errorf("Expected data value '%s' to be in format 'key=value'", kv)
	}

	val, err := DecodeData([]byte(pieces[1]))
	if err != nil {
		return fmt.Errorf("Decoding data value '%s': %s", kv, err)
	}

	keys := strings.Split(pieces[0], ".")
	current := data

	for _, key := range keys[:len(keys)-1] {
		existing, found, err := current.Get(starlark.String(key))
		if err != nil {
			return err
		}
		next, ok := existing.(*starlark.Dict)
		if !found || !ok {
			next = starlark.NewDict(0)
			err = current.SetKey(starlark.String(key), next)
			if err != nil {
				return err
			}
		}
		current = next
	}

	return current.SetKey(starlark.String(keys[len(keys)-1]), val)
}
