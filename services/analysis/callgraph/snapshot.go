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

// CallRecord is one call edge of a Snapshot in textual signature form.
type CallRecord struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Snapshot is the serializable form of a Graph.
//
// Methods are sorted with signature.Compare and calls are in export order,
// so equal graphs produce byte-identical encodings. The same struct is used
// for JSON (storage, HTTP) and YAML (fixtures).
type Snapshot struct {
	ParallelEdges bool         `json:"parallel_edges,omitempty" yaml:"parallel_edges,omitempty"`
	Methods       []string     `json:"methods" yaml:"methods"`
	Calls         []CallRecord `json:"calls" yaml:"calls"`
}

// Snapshot captures the graph contents.
func (g *Graph) Snapshot() Snapshot {
	methods := g.MethodSignatures()
	slices.SortFunc(methods, signature.Compare)

	s := Snapshot{
		ParallelEdges: g.options.ParallelEdges,
		Methods:       make([]string, len(methods)),
		Calls:         make([]CallRecord, 0, len(g.edges)),
	}
	for i, m := range methods {
		s.Methods[i] = m.String()
	}
	for _, c := range g.Calls() {
		s.Calls = append(s.Calls, CallRecord{From: c.Source.String(), To: c.Target.String()})
	}
	return s
}

// FromSnapshot rebuilds a graph from a snapshot.
//
// Description:
//
//	Adds every listed method, then every call. A call whose endpoint is not
//	listed under methods fails with ErrMethodNotFound, the same as AddCall.
//	The snapshot's ParallelEdges flag is applied before opts.
//
// Outputs:
//
//	*Graph - The rebuilt graph.
//	error - ErrInvalidSnapshot for unparsable signatures, ErrMethodNotFound
//	        for calls to unlisted methods.
func FromSnapshot(s Snapshot, factory *signature.IdentifierFactory, opts ...Option) (*Graph, error) {
	if factory == nil {
		factory = signature.NewIdentifierFactory()
	}
	if s.ParallelEdges {
		opts = append([]Option{WithParallelEdges()}, opts...)
	}
	g := New(opts...)

	for _, text := range s.Methods {
		m, err := factory.ParseMethodSignature(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		g.AddMethod(m)
	}

	for i, c := range s.Calls {
		from, err := factory.ParseMethodSignature(c.From)
		if err != nil {
			return nil, fmt.Errorf("%w: call %d: %w", ErrInvalidSnapshot, i, err)
		}
		to, err := factory.ParseMethodSignature(c.To)
		if err != nil {
			return nil, fmt.Errorf("%w: call %d: %w", ErrInvalidSnapshot, i, err)
		}
		if err := g.AddCall(from, to); err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
	}

	return g, nil
}
