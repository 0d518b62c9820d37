// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model holds the class, method and field declarations a View
// resolves signatures to.
//
// Declarations are produced by a front end and borrowed by views. They MUST
// NOT be mutated after being handed to a view.
package model

import (
	"strings"

	"github.com/ceclin/SootUp/services/analysis/signature"
)

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModStatic
	ModFinal
	ModAbstract
	ModNative
	ModInterface
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModPrivate, "private"},
	{ModProtected, "protected"},
	{ModStatic, "static"},
	{ModFinal, "final"},
	{ModAbstract, "abstract"},
	{ModNative, "native"},
	{ModInterface, "interface"},
}

// ModifierByName returns the modifier with the given lowercase name.
func ModifierByName(name string) (Modifiers, bool) {
	for _, mn := range modifierNames {
		if mn.name == name {
			return mn.mod, true
		}
	}
	return 0, false
}

// Has reports whether every bit of m2 is set in m.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// String renders the set modifiers separated by spaces.
func (m Modifiers) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// Class is a declared class or interface.
type Class struct {
	// Type identifies the class.
	Type signature.ClassType

	// SuperClass is the direct superclass. Nil for java.lang.Object,
	// interfaces and classes whose superclass is outside the program.
	SuperClass *signature.ClassType

	// Interfaces are the directly implemented (or, for an interface,
	// extended) interfaces.
	Interfaces []signature.ClassType

	Modifiers Modifiers
	Methods   []*Method
	Fields    []*Field
}

// IsInterface reports whether the class is an interface.
func (c *Class) IsInterface() bool {
	return c.Modifiers.Has(ModInterface)
}

// Method returns the declared method with the given signature.
func (c *Class) Method(sig signature.MethodSignature) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Signature == sig {
			return m, true
		}
	}
	return nil, false
}

// Field returns the declared field with the given signature.
func (c *Class) Field(sig signature.FieldSignature) (*Field, bool) {
	for _, f := range c.Fields {
		if f.Signature == sig {
			return f, true
		}
	}
	return nil, false
}

// Method is a declared method.
type Method struct {
	Signature signature.MethodSignature
	Modifiers Modifiers
}

// IsAbstract reports whether the method has no body.
func (m *Method) IsAbstract() bool {
	return m.Modifiers.Has(ModAbstract) || m.Modifiers.Has(ModNative)
}

// Field is a declared field.
type Field struct {
	Signature signature.FieldSignature
	Modifiers Modifiers
}
