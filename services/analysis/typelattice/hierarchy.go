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

// Hierarchy answers assignability questions over a set of types.
type Hierarchy interface {
	// IsAncestor reports whether child may be stored into a slot of type
	// ancestor.
	IsAncestor(ancestor, child Type) bool

	// LeastCommonAncestor returns the minimal upper bounds of a and b.
	// An empty result means no common ancestor exists.
	LeastCommonAncestor(a, b Type) []Type
}

// PrimitiveHierarchy is the widening lattice over primitive, bottom and
// array types.
//
// The zero value is ready to use.
type PrimitiveHierarchy struct{}

var _ Hierarchy = PrimitiveHierarchy{}

// IsAncestor reports whether child can be assigned to a slot of type
// ancestor under bytecode widening rules.
//
// Description:
//
//	The relation is reflexive and Bottom is a child of everything. Between
//	two primitives the integer chain decides. Between two arrays the chain
//	decides on the bases when the dimensions agree; otherwise only a
//	Bottom-based child array is accepted. Any other pairing is related
//	only when child is Bottom.
func (h PrimitiveHierarchy) IsAncestor(ancestor, child Type) bool {
	if ancestor == child {
		return true
	}

	if ArePrimitives(ancestor, child) {
		return scalarAncestor(ancestor, child)
	}

	a, aok := ancestor.(ArrayType)
	c, cok := child.(ArrayType)
	if aok && cok {
		if a.Dimension == c.Dimension && ArePrimitives(a.Base, c.Base) {
			return arrayBaseAncestor(a.Base, c.Base)
		}
		return isBottom(c.Base)
	}

	return isBottom(child)
}

// LeastCommonAncestor computes the join of a and b.
//
// Description:
//
//	Cases, in order:
//	  1. a == b yields {a}
//	  2. a pair that is not both primitive-or-Bottom has no join, so arrays
//	     and references only ever join with themselves
//	  3. if one is an ancestor of the other, the ancestor
//	  4. byte, short and char pairs (and byte with Integer32767) join to int
//	  5. everything else has no join and yields an empty slice
//
//	The result is a slice so that a lattice with several incomparable upper
//	bounds fits the same signature. This lattice yields at most one element.
//
// Outputs:
//
//	[]Type - Zero or one element. Never nil.
func (h PrimitiveHierarchy) LeastCommonAncestor(a, b Type) []Type {
	if a == b {
		return []Type{a}
	}
	if !ArePrimitives(a, b) {
		return []Type{}
	}
	if h.IsAncestor(a, b) {
		return []Type{a}
	}
	if h.IsAncestor(b, a) {
		return []Type{b}
	}
	if joinsToInt(a, b) || joinsToInt(b, a) {
		return []Type{Int}
	}
	return []Type{}
}

// ArePrimitives reports whether both a and b are primitive or Bottom.
func ArePrimitives(a, b Type) bool {
	return isPrimitiveOrBottom(a) && isPrimitiveOrBottom(b)
}

func isPrimitiveOrBottom(t Type) bool {
	switch t.(type) {
	case PrimitiveType, BottomType:
		return true
	}
	return false
}

// scalarAncestor applies the integer chain to two primitive-or-bottom types
// that are known to differ.
func scalarAncestor(ancestor, child Type) bool {
	if isBottom(child) {
		return true
	}
	ap, ok := ancestor.(PrimitiveType)
	if !ok {
		// Bottom has no children other than itself.
		return false
	}
	cp := child.(PrimitiveType)

	switch ap {
	case Integer1:
		return false
	case Boolean, Integer127:
		return cp == Integer1
	case Byte, Integer32767:
		return cp == Integer127 || cp == Integer1
	case Char, Short:
		return cp == Integer32767 || cp == Integer127 || cp == Integer1
	case Int:
		return cp.isIntFamily() && cp != Boolean
	case Long, Float, Double:
		return false
	}
	return false
}

// arrayBaseAncestor applies the chain to array base types of equal
// dimension. Unlike scalars, char[] and short[] accept only bottom-based
// arrays and int[] accepts only the augmented levels.
func arrayBaseAncestor(ancestor, child Type) bool {
	if isBottom(child) {
		return true
	}
	ap, ok := ancestor.(PrimitiveType)
	if !ok {
		return false
	}
	cp := child.(PrimitiveType)

	switch ap {
	case Integer1:
		return false
	case Boolean, Integer127:
		return cp == Integer1
	case Byte, Integer32767:
		return cp == Integer127 || cp == Integer1
	case Int:
		return cp == Integer32767 || cp == Integer127 || cp == Integer1
	case Char, Short, Long, Float, Double:
		return false
	}
	return false
}

// joinsToInt reports whether a and b are one of the incomparable
// narrow-integer pairs whose join is int. Callers test both orders, so
// Integer32767 with byte joins to int whichever side it is on.
func joinsToInt(a, b Type) bool {
	ap, aok := a.(PrimitiveType)
	bp, bok := b.(PrimitiveType)
	if !aok || !bok {
		return false
	}

	switch ap {
	case Byte:
		return bp == Short || bp == Char || bp == Integer32767
	case Short:
		return bp == Byte || bp == Char
	case Char:
		return bp == Byte || bp == Short
	}
	return false
}
