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
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/ceclin/SootUp/services/analysis/signature"
)

// Call is one stored call edge.
type Call struct {
	Source signature.MethodSignature
	Target signature.MethodSignature
}

// compareCalls orders calls by source then target, each keyed by simple
// class name, method name and parameter list.
func compareCalls(a, b Call) int {
	if c := signature.CompareByClassName(a.Source, b.Source); c != 0 {
		return c
	}
	return signature.CompareByClassName(a.Target, b.Target)
}

// Calls returns every stored edge in export order.
//
// With parallel edges enabled a pair appears once per stored edge.
func (g *Graph) Calls() []Call {
	calls := make([]Call, len(g.edges))
	for i, e := range g.edges {
		calls[i] = Call{Source: g.vertices[e.from].sig, Target: g.vertices[e.to].sig}
	}
	slices.SortStableFunc(calls, compareCalls)
	return calls
}

// ExportAsDOT renders the graph as a strict digraph.
//
// Description:
//
//	Emits one line per edge, `\t"<source>" -> "<target>";`, sorted by
//	(source class name, source method name, source parameter list,
//	target class name, target method name, target parameter list).
//	The output depends only on graph contents, never on insertion order.
func (g *Graph) ExportAsDOT() string {
	var sb strings.Builder
	sb.WriteString("strict digraph ObjectGraph {\n")
	for _, c := range g.Calls() {
		sb.WriteString("\t")
		sb.WriteString(strconv.Quote(c.Source.String()))
		sb.WriteString(" -> ")
		sb.WriteString(strconv.Quote(c.Target.String()))
		sb.WriteString(";\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// String renders a human-readable dump of the graph.
//
// Every method is listed sorted with signature.Compare, followed by one
// "\tto <target>" line per callee and one "\tfrom <source>" line per caller,
// each list sorted the same way. A blank line separates methods.
func (g *Graph) String() string {
	var sb strings.Builder
	sb.WriteString("GraphBasedCallGraph(" + strconv.Itoa(g.CallCount()) + ")")
	if len(g.vertices) == 0 {
		sb.WriteString(" is empty")
		return sb.String()
	}
	sb.WriteString(":\n")

	methods := g.MethodSignatures()
	slices.SortFunc(methods, signature.Compare)
	for _, m := range methods {
		sb.WriteString(m.String())
		sb.WriteString(":\n")

		// Both lookups are on registered methods and cannot fail.
		to, _ := g.CallsFrom(m)
		for _, t := range to {
			sb.WriteString("\tto " + t.String() + "\n")
		}
		from, _ := g.CallsTo(m)
		for _, f := range from {
			sb.WriteString("\tfrom " + f.String() + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Fingerprint returns a 64-bit content hash of the DOT export in hex.
// Equal graphs have equal fingerprints across processes.
func (g *Graph) Fingerprint() string {
	return fmt.Sprintf("%016x", xxh3.HashString(g.ExportAsDOT()))
}

// Stats summarizes graph contents.
type Stats struct {
	Methods       int `json:"methods"`
	Calls         int `json:"calls"`
	DistinctCalls int `json:"distinct_calls"`
	SelfCalls     int `json:"self_calls"`
	MaxOutDegree  int `json:"max_out_degree"`
	MaxInDegree   int `json:"max_in_degree"`
}

// Stats computes summary counts. O(V + E).
func (g *Graph) Stats() Stats {
	s := Stats{
		Methods:       len(g.vertices),
		Calls:         len(g.edges),
		DistinctCalls: len(g.pairs),
	}
	for e := range g.pairs {
		if e.from == e.to {
			s.SelfCalls++
		}
	}
	for _, v := range g.vertices {
		s.MaxOutDegree = max(s.MaxOutDegree, len(v.outgoing))
		s.MaxInDegree = max(s.MaxInDegree, len(v.incoming))
	}
	return s
}
