// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import "github.com/ceclin/SootUp/services/analysis/callgraph"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code"`
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// GraphSummary describes a registered call graph.
type GraphSummary struct {
	Name        string          `json:"name"`
	Fingerprint string          `json:"fingerprint"`
	Stats       callgraph.Stats `json:"stats"`
}

// ListGraphsResponse is returned by GET /v1/callgraphs.
type ListGraphsResponse struct {
	Graphs []string `json:"graphs"`
}

// CallsResponse is returned by GET /v1/callgraphs/:name/calls.
type CallsResponse struct {
	Method    string   `json:"method"`
	Direction string   `json:"direction"`
	Methods   []string `json:"methods"`
}

// ContainsCallResponse is returned by GET /v1/callgraphs/:name/contains.
type ContainsCallResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Contains bool   `json:"contains"`
}

// LCARequest is the body of POST /v1/lattice/lca.
type LCARequest struct {
	A string `json:"a" binding:"required"`
	B string `json:"b" binding:"required"`
}

// LCAResponse lists the least common ancestors of two types.
type LCAResponse struct {
	Types []string `json:"types"`
}

// AncestorRequest is the body of POST /v1/lattice/ancestor.
type AncestorRequest struct {
	Ancestor string `json:"ancestor" binding:"required"`
	Child    string `json:"child" binding:"required"`
}

// AncestorResponse reports whether Ancestor is an ancestor of Child.
type AncestorResponse struct {
	IsAncestor bool `json:"is_ancestor"`
}
