// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// NewOptionsFromQuery parses loader options in query string form:
//
//	?helperDirs[]=a&helperDirs=b&runtime=x&inlineRequires=false
//
// List options may be repeated with or without the "[]" suffix.
// A query whose body starts with "{" is read as a JSON object instead.
// Unknown keys and malformed values are dropped so that the field keeps its
// default. Only an unparsable query is an error.
func NewOptionsFromQuery(query string) (Options, error) {
	query = strings.TrimPrefix(strings.TrimSpace(query), "?")
	if len(query) == 0 {
		return Options{}, nil
	}

	if strings.HasPrefix(query, "{") {
		var raw map[string]interface{}
		err := yaml.Unmarshal([]byte(query), &raw)
		if err != nil {
			return Options{}, fmt.Errorf("Parsing JSON options: %s", err)
		}
		return NewOptionsFromMap(raw), nil
	}

	raw := map[string]interface{}{}
	for _, pair := range strings.Split(query, "&") {
		if len(pair) == 0 {
			continue
		}
		key, val, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(key)
		if err != nil {
			return Options{}, fmt.Errorf("Parsing query options: %s", err)
		}
		val, err = url.QueryUnescape(val)
		if err != nil {
			return Options{}, fmt.Errorf("Parsing query options: %s", err)
		}

		key = strings.TrimSuffix(key, "[]")
		if _, found := listKeys[key]; found {
			list, _ := raw[key].([]interface{})
			raw[key] = append(list, val)
			continue
		}
		// Last occurrence wins for scalar keys
		raw[key] = val
	}
	return NewOptionsFromMap(raw), nil
}

// listKeys collect every occurrence of "k" and "k[]" in query order.
var listKeys = map[string]struct{}{
	"helperDirs":   {},
	"partialDirs":  {},
	"extensions":   {},
	"knownHelpers": {},
}

// NewOptionsFromMap normalizes loosely typed options as produced by query,
// JSON or TOML decoding.
func NewOptionsFromMap(raw map[string]interface{}) Options {
	var opts Options

	opts.HelperDirs = stringList(raw["helperDirs"])
	opts.PartialDirs = stringList(raw["partialDirs"])
	opts.Extensions = stringList(raw["extensions"])
	opts.KnownHelpers = stringList(raw["knownHelpers"])

	if val, ok := raw["runtime"].(string); ok && len(strings.TrimSpace(val)) > 0 {
		opts.Runtime = stringPtr(strings.TrimSpace(val))
	}

	opts.InlineRequires = looseBool(raw["inlineRequires"])
	opts.IgnoreHelpers = looseBool(raw["ignoreHelpers"])
	opts.IgnorePartials = looseBool(raw["ignorePartials"])
	opts.Debug = looseBool(raw["debug"])

	return opts
}

// stringList returns nil (unset) for anything but a list of strings.
func stringList(val interface{}) []string {
	switch typedVal := val.(type) {
	case []string:
		return copyStrings(typedVal)
	case []interface{}:
		result := []string{}
		for _, item := range typedVal {
			str, ok := item.(string)
			if !ok {
				return nil
			}
			result = append(result, str)
		}
		return result
	default:
		return nil
	}
}

func looseBool(val interface{}) *bool {
	switch typedVal := val.(type) {
	case bool:
		return boolPtr(typedVal)
	case string:
		if result, ok := ParseBool(typedVal); ok {
			return boolPtr(result)
		}
	case int64:
		if typedVal == 0 || typedVal == 1 {
			return boolPtr(typedVal == 1)
		}
	case int:
		if typedVal == 0 || typedVal == 1 {
			return boolPtr(typedVal == 1)
		}
	}
	return nil
}
