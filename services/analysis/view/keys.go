// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package view

import (
	"context"
	"fmt"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/typelattice"
)

// Well-known module data keys.
var (
	// CallGraphKey holds the call graph built for a view.
	CallGraphKey = NewModuleDataKey[*callgraph.Graph]("callgraph")

	// PrimitiveHierarchyKey holds the primitive type lattice.
	PrimitiveHierarchyKey = NewModuleDataKey[typelattice.Hierarchy]("typelattice.primitive")
)

// CallGraphBuilder constructs a call graph for a view.
type CallGraphBuilder func(ctx context.Context, v View) (*callgraph.Graph, error)

// CallGraphOf returns the call graph cached in v, building it with build on
// first use. A nil build only looks the graph up and fails with ErrNotFound
// when none has been built yet.
//
// The returned graph is shared by every caller. Callers that need to mutate
// it must work on a Copy.
func CallGraphOf(ctx context.Context, v View, build CallGraphBuilder) (*callgraph.Graph, error) {
	if build == nil {
		g, ok := GetModuleData(v, CallGraphKey)
		if !ok {
			return nil, fmt.Errorf("call graph: %w", ErrNotFound)
		}
		return g, nil
	}
	return ComputeModuleDataIfAbsent(ctx, v, CallGraphKey, func(ctx context.Context) (*callgraph.Graph, error) {
		return build(ctx, v)
	})
}

// PrimitiveHierarchyOf returns the primitive type lattice cached in v.
func PrimitiveHierarchyOf(ctx context.Context, v View) typelattice.Hierarchy {
	h, _ := ComputeModuleDataIfAbsent(ctx, v, PrimitiveHierarchyKey, func(context.Context) (typelattice.Hierarchy, error) {
		return typelattice.PrimitiveHierarchy{}, nil
	})
	return h
}
