// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package program

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceclin/SootUp/services/analysis/model"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/view"
)

var factory = signature.NewIdentifierFactory()

func loadShapes(t *testing.T) *Program {
	t.Helper()
	data, err := os.ReadFile("testdata/shapes.yaml")
	require.NoError(t, err)
	p, err := Decode(data, factory)
	require.NoError(t, err)
	return p
}

func TestDecode(t *testing.T) {
	p := loadShapes(t)

	require.Len(t, p.Classes(), 4)
	circle := p.Classes()[2]
	assert.Equal(t, "shapes.Circle", circle.Type.FullyQualifiedName())
	require.NotNil(t, circle.SuperClass)
	assert.Equal(t, "java.lang.Object", circle.SuperClass.FullyQualifiedName())
	assert.Len(t, circle.Methods, 2)
	require.Len(t, circle.Fields, 1)
	assert.True(t, circle.Fields[0].Modifiers.Has(model.ModPrivate|model.ModFinal))
	assert.True(t, p.Classes()[1].IsInterface())
}

func TestView_AppliesScope(t *testing.T) {
	v := loadShapes(t).View()

	s, ok := v.Scope()
	require.True(t, ok)
	assert.Equal(t, "shapes", s.Name)
	assert.Len(t, v.Classes(), 3)

	_, ok = v.Class(factory.ClassType("java.lang.Object"))
	assert.False(t, ok)

	h := v.TypeHierarchy()
	assert.True(t, h.IsSubtype(factory.ClassType("shapes.Shape"), factory.ClassType("shapes.Circle")))
}

func TestCallGraph(t *testing.T) {
	p := loadShapes(t)
	v := p.View()

	g, err := p.CallGraph(context.Background(), v)
	require.NoError(t, err)

	// Object is out of scope, so its method and the call to it are dropped.
	assert.Equal(t, 4, g.MethodCount())
	assert.Equal(t, 2, g.CallCount())

	main, err := factory.ParseMethodSignature("<shapes.Main: void main(java.lang.String[])>")
	require.NoError(t, err)
	callees, err := g.CallsFrom(main)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	assert.Equal(t, "<shapes.Circle: double area()>", callees[0].String())

	again, err := p.CallGraph(context.Background(), v)
	require.NoError(t, err)
	assert.Same(t, g, again)

	cached, ok := view.GetModuleData(v, view.CallGraphKey)
	require.True(t, ok)
	assert.Same(t, g, cached)
}

func TestCallGraph_Unscoped(t *testing.T) {
	p := loadShapes(t)
	v := p.View(view.WithScope(view.Scope{}))

	g, err := p.CallGraph(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, 5, g.MethodCount())
	assert.Equal(t, 3, g.CallCount())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "klasses: []\n"},
		{"missing name", "classes:\n  - super: a.B\n"},
		{"bad modifier", "classes:\n  - name: a.B\n    modifiers: [sealed]\n"},
		{"bad method", "classes:\n  - name: a.B\n    methods:\n      - signature: nonsense\n"},
		{"foreign method", "classes:\n  - name: a.B\n    methods:\n      - signature: \"<a.C: void m()>\"\n"},
		{"foreign field", "classes:\n  - name: a.B\n    fields:\n      - signature: \"<a.C: int f>\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.body), factory)
			assert.ErrorIs(t, err, ErrInvalidProgram)
		})
	}
}

func TestBuilder_BadCall(t *testing.T) {
	p, err := Decode([]byte("classes: []\ncalls:\n  - from: nope\n    to: nope\n"), factory)
	require.NoError(t, err)

	_, err = p.Builder()(context.Background(), p.View())
	assert.ErrorIs(t, err, ErrInvalidProgram)
}

func TestParseModifiers(t *testing.T) {
	mods, err := ParseModifiers([]string{"Public", " static "})
	require.NoError(t, err)
	assert.Equal(t, model.ModPublic|model.ModStatic, mods)

	_, err = ParseModifiers([]string{"transient"})
	assert.ErrorIs(t, err, ErrUnknownModifier)
}
