// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal serializes program deterministically: struct fields are
// emitted in declaration order and hash pairs keep template order.
func Marshal(program *Program) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(program)
	if err != nil {
		return "", fmt.Errorf("Marshaling template: %s", err)
	}

	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Unmarshal decodes a payload produced by Marshal. It does not check
// whether the payload's Format is supported.
func Unmarshal(payload string) (*Program, error) {
	var program Program

	err := json.Unmarshal([]byte(payload), &program)
	if err != nil {
		return nil, fmt.Errorf("Unmarshaling template: %s", err)
	}
	if len(program.Format) == 0 {
		return nil, fmt.Errorf("Unmarshaling template: expected format version to be set")
	}
	return &program, nil
}
