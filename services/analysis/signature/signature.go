// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package signature provides the identifiers the analysis core keys on.
//
// Signatures are immutable comparable values. They can be used directly as
// map keys and are shared freely between graphs, views and snapshots; nothing
// in this module mutates a signature after construction.
//
// # Textual Form
//
// Class types render as their fully-qualified name ("java.lang.String").
// Method signatures render as "<pkg.Class: ret name(p1,p2)>" and field
// signatures as "<pkg.Class: type name>". The textual form is stable and is
// the rendering used by every export.
package signature

import (
	"cmp"
	"strings"
)

// ClassType identifies a declared class or interface by package and simple name.
type ClassType struct {
	// Package is the dotted package name. Empty for the default package.
	Package string

	// Name is the simple class name, e.g. "String" and not "java.lang.String".
	Name string
}

// FullyQualifiedName joins the package and simple name, e.g. "java.lang.System".
func (c ClassType) FullyQualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// String returns the fully-qualified name.
func (c ClassType) String() string {
	return c.FullyQualifiedName()
}

// IsZero reports whether c is the zero ClassType.
func (c ClassType) IsZero() bool {
	return c.Package == "" && c.Name == ""
}

// MethodSignature identifies a method by declaring class, name, parameter
// types and return type.
//
// Parameter types are kept in an encoded form so the struct stays comparable.
// Use Parameters to read them back.
type MethodSignature struct {
	DeclClass  ClassType
	Name       string
	ReturnType string
	params     string
}

// Parameters returns a fresh copy of the parameter type names.
func (m MethodSignature) Parameters() []string {
	if m.params == "" {
		return nil
	}
	return strings.Split(m.params, ",")
}

// ParameterCount returns the number of declared parameters.
func (m MethodSignature) ParameterCount() int {
	if m.params == "" {
		return 0
	}
	return strings.Count(m.params, ",") + 1
}

// ParameterList renders the parameter types as "[p1, p2]". This is the
// rendering used as the third component of every method sort key.
func (m MethodSignature) ParameterList() string {
	return "[" + strings.ReplaceAll(m.params, ",", ", ") + "]"
}

// SubSignature renders the class-independent part, "ret name(p1,p2)".
func (m MethodSignature) SubSignature() string {
	return m.ReturnType + " " + m.Name + "(" + m.params + ")"
}

// String renders "<pkg.Class: ret name(p1,p2)>".
func (m MethodSignature) String() string {
	return "<" + m.DeclClass.FullyQualifiedName() + ": " + m.SubSignature() + ">"
}

// FieldSignature identifies a field by declaring class, name and type.
type FieldSignature struct {
	DeclClass ClassType
	Name      string
	Type      string
}

// String renders "<pkg.Class: type name>".
func (f FieldSignature) String() string {
	return "<" + f.DeclClass.FullyQualifiedName() + ": " + f.Type + " " + f.Name + ">"
}

// Compare orders method signatures by fully-qualified declaring class, then
// method name, then parameter list. The full textual form breaks any
// remaining tie so the order is total.
func Compare(a, b MethodSignature) int {
	if c := cmp.Compare(a.DeclClass.FullyQualifiedName(), b.DeclClass.FullyQualifiedName()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ParameterList(), b.ParameterList()); c != 0 {
		return c
	}
	return cmp.Compare(a.String(), b.String())
}

// CompareByClassName is Compare keyed on the simple class name instead of
// the fully-qualified one. Graph-description exports sort edges with it.
func CompareByClassName(a, b MethodSignature) int {
	if c := cmp.Compare(a.DeclClass.Name, b.DeclClass.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ParameterList(), b.ParameterList()); c != 0 {
		return c
	}
	return cmp.Compare(a.String(), b.String())
}
