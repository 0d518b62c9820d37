// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package typelattice implements the primitive widening lattice used to
// reconcile local-variable types recovered from weakly typed bytecode.
//
// # Types
//
// The lattice ranges over a closed set of variants:
//   - PrimitiveType: the JVM primitives plus three augmented integer levels
//     (Integer1, Integer127, Integer32767) that stand for constants whose
//     value range fits a narrower type than int
//   - BottomType: the infimum, assignable to every type
//   - ArrayType: a primitive, bottom or reference base with a dimension
//   - ReferenceType: any class type; only ever related through BottomType
//
// # Order
//
// The integer levels widen as
//
//	Bottom < Integer1 < {Boolean, Integer127} < {Byte, Integer32767} < {Char, Short} < Int
//
// where boolean is a dead end (int does not accept it) and char/short are
// incomparable with each other. Arrays follow the same chain on their base
// types when dimensions agree.
//
// # Thread Safety
//
// Every type and PrimitiveHierarchy is immutable. All functions are safe for
// concurrent use.
package typelattice

import "strings"

// Type is one element of the lattice.
//
// Implementations are limited to the types in this package; all of them are
// comparable, so two Types can be compared with ==.
type Type interface {
	String() string
	isType()
}

// PrimitiveType enumerates the primitive and augmented integer types.
type PrimitiveType uint8

const (
	// Boolean is the JVM boolean type.
	Boolean PrimitiveType = iota + 1

	// Byte is the JVM byte type.
	Byte

	// Char is the JVM char type.
	Char

	// Short is the JVM short type.
	Short

	// Int is the JVM int type.
	Int

	// Long is the JVM long type.
	Long

	// Float is the JVM float type.
	Float

	// Double is the JVM double type.
	Double

	// Integer1 is an int constant in [0, 1].
	Integer1

	// Integer127 is an int constant in [0, 127].
	Integer127

	// Integer32767 is an int constant in [0, 32767].
	Integer32767
)

var primitiveNames = map[PrimitiveType]string{
	Boolean:      "boolean",
	Byte:         "byte",
	Char:         "char",
	Short:        "short",
	Int:          "int",
	Long:         "long",
	Float:        "float",
	Double:       "double",
	Integer1:     "integer1",
	Integer127:   "integer127",
	Integer32767: "integer32767",
}

// String returns the lower-case type name.
func (p PrimitiveType) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return "unknown"
}

func (PrimitiveType) isType() {}

// isIntFamily reports whether values of p are stored as an int slot.
func (p PrimitiveType) isIntFamily() bool {
	switch p {
	case Boolean, Byte, Char, Short, Int, Integer1, Integer127, Integer32767:
		return true
	case Long, Float, Double:
		return false
	}
	return false
}

// BottomType is the least element of the lattice.
type BottomType struct{}

// Bottom is the single BottomType value.
var Bottom Type = BottomType{}

// String returns "bottom".
func (BottomType) String() string { return "bottom" }

func (BottomType) isType() {}

// ReferenceType is a class type. The lattice treats it as opaque.
type ReferenceType struct {
	Name string
}

// String returns the class name.
func (r ReferenceType) String() string { return r.Name }

func (ReferenceType) isType() {}

// ArrayType is an array of Base with Dimension levels of nesting.
//
// Base is never itself an ArrayType; NewArrayType flattens nested arrays.
type ArrayType struct {
	Base      Type
	Dimension int
}

// NewArrayType returns the array type of base with the given dimension.
// An array base is flattened so int[][] is always {Int, 2}.
func NewArrayType(base Type, dimension int) ArrayType {
	if inner, ok := base.(ArrayType); ok {
		return ArrayType{Base: inner.Base, Dimension: inner.Dimension + dimension}
	}
	return ArrayType{Base: base, Dimension: dimension}
}

// String renders the base followed by one "[]" per dimension.
func (a ArrayType) String() string {
	base := "<nil>"
	if a.Base != nil {
		base = a.Base.String()
	}
	return base + strings.Repeat("[]", a.Dimension)
}

func (ArrayType) isType() {}

// isBottom reports whether t is the bottom type.
func isBottom(t Type) bool {
	_, ok := t.(BottomType)
	return ok
}
