// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package callgraph

import (
	"fmt"
	"slices"

	"github.com/ceclin/SootUp/services/analysis/signature"
)

// CallGraph is the read side of a call graph.
type CallGraph interface {
	// MethodSignatures returns every method in the graph.
	MethodSignatures() []signature.MethodSignature

	// CallsFrom returns the distinct targets of calls from source.
	CallsFrom(source signature.MethodSignature) ([]signature.MethodSignature, error)

	// CallsTo returns the distinct sources of calls to target.
	CallsTo(target signature.MethodSignature) ([]signature.MethodSignature, error)

	// ContainsMethod reports whether method was added.
	ContainsMethod(method signature.MethodSignature) bool

	// ContainsCall reports whether a call from source to target exists.
	ContainsCall(source, target signature.MethodSignature) bool

	// CallCount returns the number of stored call edges.
	CallCount() int

	// ExportAsDOT renders the graph in graph-description format.
	ExportAsDOT() string
}

// MutableCallGraph is a CallGraph that accepts new methods and calls.
type MutableCallGraph interface {
	CallGraph

	// AddMethod registers method as a vertex.
	AddMethod(method signature.MethodSignature)

	// AddCall adds a call edge between two registered methods.
	AddCall(source, target signature.MethodSignature) error
}

// Options configures Graph behavior.
type Options struct {
	// ParallelEdges keeps one edge per AddCall instead of one edge per
	// distinct (source, target) pair. CallCount then counts calls added.
	// Default: false
	ParallelEdges bool
}

// Option is a functional option for configuring Graph.
type Option func(*Options)

// WithParallelEdges makes every AddCall store a new edge, even when the
// same pair is already connected.
func WithParallelEdges() Option {
	return func(o *Options) {
		o.ParallelEdges = true
	}
}

// vertex is one method in the arena.
type vertex struct {
	sig signature.MethodSignature

	// outgoing and incoming hold edge handles.
	outgoing []int
	incoming []int
}

// edge is a directed call between two vertex handles.
type edge struct {
	from int
	to   int
}

// Graph is a mutable call graph over method signatures.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. Concurrent
//	readers are fine once no goroutine is writing.
type Graph struct {
	vertices []vertex
	edges    []edge

	// index maps a signature to its vertex handle.
	index map[signature.MethodSignature]int

	// pairs counts the edges stored per (source, target) handle pair.
	pairs map[edge]int

	// byType maps a declaring class to the handles of its methods.
	byType map[signature.ClassType][]int

	options Options
}

var _ MutableCallGraph = (*Graph)(nil)

// New creates an empty call graph.
//
// Example:
//
//	g := callgraph.New()
//	g.AddMethod(main)
//	g.AddMethod(helper)
//	if err := g.AddCall(main, helper); err != nil {
//	    return err
//	}
func New(opts ...Option) *Graph {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		vertices: make([]vertex, 0),
		edges:    make([]edge, 0),
		index:    make(map[signature.MethodSignature]int),
		pairs:    make(map[edge]int),
		byType:   make(map[signature.ClassType][]int),
		options:  options,
	}
}

// Options returns the configuration the graph was created with.
func (g *Graph) Options() Options {
	return g.options
}

// AddMethod registers method as a vertex.
//
// Description:
//
//	Adding a method that is already present is a no-op; its edges are kept.
//	Callers look vertices up by signature only, never by identity.
func (g *Graph) AddMethod(method signature.MethodSignature) {
	if _, exists := g.index[method]; exists {
		return
	}

	handle := len(g.vertices)
	g.vertices = append(g.vertices, vertex{sig: method})
	g.index[method] = handle
	g.byType[method.DeclClass] = append(g.byType[method.DeclClass], handle)
}

// AddCall adds a call edge from source to target.
//
// Description:
//
//	Both methods must have been added with AddMethod. Self-calls and cycles
//	are allowed. Unless the graph was built WithParallelEdges, adding an
//	existing pair again is a no-op.
//
// Outputs:
//
//	error - ErrMethodNotFound if either endpoint is unknown.
func (g *Graph) AddCall(source, target signature.MethodSignature) error {
	from, err := g.vertexOf(source)
	if err != nil {
		return err
	}
	to, err := g.vertexOf(target)
	if err != nil {
		return err
	}

	e := edge{from: from, to: to}
	if g.pairs[e] > 0 && !g.options.ParallelEdges {
		return nil
	}

	handle := len(g.edges)
	g.edges = append(g.edges, e)
	g.pairs[e]++
	g.vertices[from].outgoing = append(g.vertices[from].outgoing, handle)
	g.vertices[to].incoming = append(g.vertices[to].incoming, handle)
	return nil
}

// MethodSignatures returns every method in insertion order.
//
// Callers that need a stable presentation order sort the result with
// signature.Compare.
func (g *Graph) MethodSignatures() []signature.MethodSignature {
	out := make([]signature.MethodSignature, len(g.vertices))
	for i, v := range g.vertices {
		out[i] = v.sig
	}
	return out
}

// MethodsDeclaredIn returns the methods of the graph whose declaring class
// is decl, in insertion order.
func (g *Graph) MethodsDeclaredIn(decl signature.ClassType) []signature.MethodSignature {
	handles := g.byType[decl]
	out := make([]signature.MethodSignature, len(handles))
	for i, h := range handles {
		out[i] = g.vertices[h].sig
	}
	return out
}

// CallsFrom returns the distinct methods called by source, sorted with
// signature.Compare.
//
// Outputs:
//
//	error - ErrMethodNotFound if source was never added.
func (g *Graph) CallsFrom(source signature.MethodSignature) ([]signature.MethodSignature, error) {
	h, err := g.vertexOf(source)
	if err != nil {
		return nil, err
	}
	return g.collect(g.vertices[h].outgoing, func(e edge) int { return e.to }), nil
}

// CallsTo returns the distinct methods calling target, sorted with
// signature.Compare.
//
// Outputs:
//
//	error - ErrMethodNotFound if target was never added.
func (g *Graph) CallsTo(target signature.MethodSignature) ([]signature.MethodSignature, error) {
	h, err := g.vertexOf(target)
	if err != nil {
		return nil, err
	}
	return g.collect(g.vertices[h].incoming, func(e edge) int { return e.from }), nil
}

// collect maps edge handles to the distinct signatures at the chosen end.
func (g *Graph) collect(edgeHandles []int, end func(edge) int) []signature.MethodSignature {
	seen := make(map[int]struct{}, len(edgeHandles))
	out := make([]signature.MethodSignature, 0, len(edgeHandles))
	for _, eh := range edgeHandles {
		vh := end(g.edges[eh])
		if _, dup := seen[vh]; dup {
			continue
		}
		seen[vh] = struct{}{}
		out = append(out, g.vertices[vh].sig)
	}
	slices.SortFunc(out, signature.Compare)
	return out
}

// ContainsMethod reports whether method was added.
func (g *Graph) ContainsMethod(method signature.MethodSignature) bool {
	_, ok := g.index[method]
	return ok
}

// ContainsCall reports whether a call from source to target exists.
// Unknown methods yield false.
func (g *Graph) ContainsCall(source, target signature.MethodSignature) bool {
	from, ok := g.index[source]
	if !ok {
		return false
	}
	to, ok := g.index[target]
	if !ok {
		return false
	}
	return g.pairs[edge{from: from, to: to}] > 0
}

// MethodCount returns the number of methods.
func (g *Graph) MethodCount() int {
	return len(g.vertices)
}

// CallCount returns the number of stored call edges.
func (g *Graph) CallCount() int {
	return len(g.edges)
}

// Copy returns an independent deep copy of the graph.
//
// Description:
//
//	Vertices, edges and both indexes are duplicated. Signatures are shared
//	because they are immutable. Mutating either graph afterwards does not
//	affect the other.
func (g *Graph) Copy() *Graph {
	clone := &Graph{
		vertices: make([]vertex, len(g.vertices)),
		edges:    slices.Clone(g.edges),
		index:    make(map[signature.MethodSignature]int, len(g.index)),
		pairs:    make(map[edge]int, len(g.pairs)),
		byType:   make(map[signature.ClassType][]int, len(g.byType)),
		options:  g.options,
	}

	for i, v := range g.vertices {
		clone.vertices[i] = vertex{
			sig:      v.sig,
			outgoing: slices.Clone(v.outgoing),
			incoming: slices.Clone(v.incoming),
		}
	}
	for sig, h := range g.index {
		clone.index[sig] = h
	}
	for e, n := range g.pairs {
		clone.pairs[e] = n
	}
	for t, hs := range g.byType {
		clone.byType[t] = slices.Clone(hs)
	}

	return clone
}

// vertexOf returns the handle of method or ErrMethodNotFound.
func (g *Graph) vertexOf(method signature.MethodSignature) (int, error) {
	h, ok := g.index[method]
	if !ok {
		return 0, fmt.Errorf("%w: node for %s has not been added yet", ErrMethodNotFound, method)
	}
	return h, nil
}
