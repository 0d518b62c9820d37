// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package typelattice

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownType is returned when a type name cannot be parsed.
var ErrUnknownType = errors.New("unknown type")

var primitivesByName = func() map[string]PrimitiveType {
	m := make(map[string]PrimitiveType, len(primitiveNames))
	for p, name := range primitiveNames {
		m[name] = p
	}
	return m
}()

// ParseType parses a type name such as "int", "byte[][]", "bottom",
// "integer127" or "java.lang.String[]".
//
// Names that are not primitive, augmented or "bottom" parse as a
// ReferenceType when they look like a dotted Java identifier.
func ParseType(s string) (Type, error) {
	name := strings.TrimSpace(s)
	dim := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
		dim++
	}

	base, err := parseBase(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, s)
	}
	if dim > 0 {
		return NewArrayType(base, dim), nil
	}
	return base, nil
}

func parseBase(name string) (Type, error) {
	lower := strings.ToLower(name)
	if p, ok := primitivesByName[lower]; ok {
		return p, nil
	}
	if lower == "bottom" {
		return Bottom, nil
	}
	if !isQualifiedIdentifier(name) {
		return nil, ErrUnknownType
	}
	return ReferenceType{Name: name}, nil
}

func isQualifiedIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || r == '$' || unicode.IsLetter(r) {
				continue
			}
			if i > 0 && unicode.IsDigit(r) {
				continue
			}
			return false
		}
	}
	return true
}
