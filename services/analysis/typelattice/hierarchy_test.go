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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allScalars = []Type{
	Bottom, Boolean, Byte, Char, Short, Int, Long, Float, Double,
	Integer1, Integer127, Integer32767,
}

func TestIsAncestor_Reflexive(t *testing.T) {
	h := PrimitiveHierarchy{}
	types := append([]Type{}, allScalars...)
	types = append(types,
		NewArrayType(Int, 1),
		NewArrayType(Bottom, 3),
		ReferenceType{Name: "java.lang.Object"},
	)

	for _, ty := range types {
		assert.True(t, h.IsAncestor(ty, ty), "IsAncestor(%s, %s)", ty, ty)
	}
}

func TestIsAncestor_BottomIsInfimum(t *testing.T) {
	h := PrimitiveHierarchy{}
	for _, ty := range allScalars {
		assert.True(t, h.IsAncestor(ty, Bottom), "IsAncestor(%s, bottom)", ty)
	}
	assert.True(t, h.IsAncestor(NewArrayType(Int, 2), Bottom))
	assert.True(t, h.IsAncestor(ReferenceType{Name: "A"}, Bottom))

	for _, ty := range allScalars[1:] {
		assert.False(t, h.IsAncestor(Bottom, ty), "IsAncestor(bottom, %s)", ty)
	}
}

func TestIsAncestor_IntegerChain(t *testing.T) {
	h := PrimitiveHierarchy{}

	tests := []struct {
		ancestor Type
		child    Type
		want     bool
	}{
		{Int, Byte, true},
		{Byte, Int, false},
		{Int, Short, true},
		{Int, Char, true},
		{Int, Boolean, false},
		{Int, Integer1, true},
		{Int, Integer127, true},
		{Int, Integer32767, true},
		{Int, Long, false},
		{Long, Int, false},
		{Double, Float, false},

		{Char, Integer32767, true},
		{Short, Integer32767, true},
		{Char, Short, false},
		{Short, Char, false},
		{Short, Byte, false},
		{Char, Byte, false},

		{Byte, Integer127, true},
		{Byte, Integer1, true},
		{Byte, Boolean, false},
		{Byte, Integer32767, false},
		{Integer32767, Integer127, true},
		{Integer32767, Byte, false},

		{Boolean, Integer1, true},
		{Boolean, Integer127, false},
		{Integer127, Integer1, true},
		{Integer127, Boolean, false},

		{Integer1, Boolean, false},
		{Integer1, Integer127, false},
	}

	for _, tc := range tests {
		got := h.IsAncestor(tc.ancestor, tc.child)
		assert.Equal(t, tc.want, got, "IsAncestor(%s, %s)", tc.ancestor, tc.child)
	}
}

func TestIsAncestor_Arrays(t *testing.T) {
	h := PrimitiveHierarchy{}

	tests := []struct {
		name     string
		ancestor Type
		child    Type
		want     bool
	}{
		{"bottom base", NewArrayType(Int, 1), NewArrayType(Bottom, 1), true},
		{"dimension mismatch", NewArrayType(Int, 1), NewArrayType(Int, 2), false},
		{"bottom base any dimension", NewArrayType(Int, 1), NewArrayType(Bottom, 2), true},
		{"int accepts augmented", NewArrayType(Int, 1), NewArrayType(Integer32767, 1), true},
		{"int rejects byte", NewArrayType(Int, 1), NewArrayType(Byte, 1), false},
		{"byte accepts integer127", NewArrayType(Byte, 2), NewArrayType(Integer127, 2), true},
		{"char accepts only bottom", NewArrayType(Char, 1), NewArrayType(Integer32767, 1), false},
		{"short accepts only bottom", NewArrayType(Short, 1), NewArrayType(Bottom, 1), true},
		{"boolean accepts integer1", NewArrayType(Boolean, 1), NewArrayType(Integer1, 1), true},
		{"reference base", NewArrayType(ReferenceType{Name: "A"}, 1), NewArrayType(ReferenceType{Name: "B"}, 1), false},
		{"reference base bottom child", NewArrayType(ReferenceType{Name: "A"}, 1), NewArrayType(Bottom, 1), true},
		{"array vs scalar", Int, NewArrayType(Int, 1), false},
		{"scalar vs array", NewArrayType(Int, 1), Int, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, h.IsAncestor(tc.ancestor, tc.child))
		})
	}
}

func TestLeastCommonAncestor(t *testing.T) {
	h := PrimitiveHierarchy{}

	tests := []struct {
		a, b Type
		want []Type
	}{
		{Byte, Byte, []Type{Byte}},
		{Byte, Short, []Type{Int}},
		{Short, Byte, []Type{Int}},
		{Byte, Char, []Type{Int}},
		{Char, Short, []Type{Int}},
		{Short, Char, []Type{Int}},
		{Byte, Integer32767, []Type{Int}},
		{Integer32767, Byte, []Type{Int}},
		{Int, Byte, []Type{Int}},
		{Integer1, Int, []Type{Int}},
		{Integer127, Integer1, []Type{Integer127}},
		{Short, Integer127, []Type{Short}},
		{Bottom, Long, []Type{Long}},
		{Int, Boolean, []Type{}},
		{Boolean, Byte, []Type{}},
		{Int, Long, []Type{}},
		{Float, Double, []Type{}},
		{Int, NewArrayType(Int, 1), []Type{}},
		{NewArrayType(Int, 1), NewArrayType(Int, 2), []Type{}},
		{NewArrayType(Int, 1), NewArrayType(Int, 1), []Type{NewArrayType(Int, 1)}},
		{NewArrayType(Int, 1), NewArrayType(Bottom, 1), []Type{}},
		{NewArrayType(Int, 1), Bottom, []Type{}},
		{NewArrayType(Int, 2), NewArrayType(Bottom, 1), []Type{}},
		{ReferenceType{Name: "A"}, ReferenceType{Name: "A"}, []Type{ReferenceType{Name: "A"}}},
		{ReferenceType{Name: "A"}, ReferenceType{Name: "B"}, []Type{}},
		{ReferenceType{Name: "A"}, Bottom, []Type{}},
		{Bottom, ReferenceType{Name: "A"}, []Type{}},
	}

	for _, tc := range tests {
		got := h.LeastCommonAncestor(tc.a, tc.b)
		require.NotNil(t, got, "LCA(%s, %s)", tc.a, tc.b)
		assert.Equal(t, tc.want, got, "LCA(%s, %s)", tc.a, tc.b)
	}
}

func TestLeastCommonAncestor_Commutative(t *testing.T) {
	h := PrimitiveHierarchy{}
	for _, a := range allScalars {
		for _, b := range allScalars {
			assert.Equal(t, h.LeastCommonAncestor(a, b), h.LeastCommonAncestor(b, a), "LCA(%s, %s)", a, b)
		}
	}
}

func TestLeastCommonAncestor_IsUpperBound(t *testing.T) {
	h := PrimitiveHierarchy{}
	for _, a := range allScalars {
		for _, b := range allScalars {
			for _, j := range h.LeastCommonAncestor(a, b) {
				assert.True(t, h.IsAncestor(j, a), "%s not above %s", j, a)
				assert.True(t, h.IsAncestor(j, b), "%s not above %s", j, b)
			}
		}
	}
}

func TestArePrimitives(t *testing.T) {
	assert.True(t, ArePrimitives(Int, Bottom))
	assert.True(t, ArePrimitives(Integer1, Double))
	assert.True(t, ArePrimitives(Bottom, Bottom))
	assert.False(t, ArePrimitives(Int, NewArrayType(Int, 1)))
	assert.False(t, ArePrimitives(ReferenceType{Name: "A"}, Int))
}

func TestNewArrayType_Flattens(t *testing.T) {
	inner := NewArrayType(Byte, 1)
	outer := NewArrayType(inner, 2)

	assert.Equal(t, ArrayType{Base: Byte, Dimension: 3}, outer)
	assert.Equal(t, "byte[][][]", outer.String())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"int", Int},
		{" boolean ", Boolean},
		{"Integer127", Integer127},
		{"bottom", Bottom},
		{"byte[][]", NewArrayType(Byte, 2)},
		{"bottom[]", NewArrayType(Bottom, 1)},
		{"java.lang.String", ReferenceType{Name: "java.lang.String"}},
		{"java.lang.String[]", NewArrayType(ReferenceType{Name: "java.lang.String"}, 1)},
	}
	for _, tc := range tests {
		got, err := ParseType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "[]", "1abc", "a..b", "int[", "a b"} {
		_, err := ParseType(bad)
		assert.True(t, errors.Is(err, ErrUnknownType), "ParseType(%q) = %v", bad, err)
	}
}

func TestPrimitiveType_String(t *testing.T) {
	assert.Equal(t, "integer32767", Integer32767.String())
	assert.Equal(t, "char", Char.String())
	assert.Equal(t, "unknown", PrimitiveType(99).String())
	assert.Equal(t, "bottom", Bottom.String())
}
