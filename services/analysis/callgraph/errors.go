// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package callgraph stores the call relationships discovered during
// whole-program analysis.
//
// The package owns the storage, query and export contract of a call graph.
// Deciding which edges exist is the job of a construction algorithm outside
// this package; it registers every method with AddMethod before referring to
// it in AddCall.
//
// # Ownership Model
//
// Vertices live in an arena and are addressed by dense integer handles. A
// hash index maps each signature to its handle, and every vertex keeps its
// outgoing and incoming edges as handle lists. Signatures are immutable
// values and are shared between a graph and its copies.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use while it is being built. It is
// designed for:
//   - Single-writer access during construction (AddMethod, AddCall)
//   - Concurrent read-only access once construction has finished
//
// # Errors
//
// Referring to a method that was never added is a construction-order bug in
// the caller. AddCall, CallsFrom and CallsTo report it as ErrMethodNotFound.
// ContainsMethod and ContainsCall treat unknown methods as absent.
package callgraph

import "errors"

// Sentinel errors for call graph operations.
var (
	// ErrMethodNotFound is returned when an operation references a method
	// signature that has not been added with AddMethod.
	ErrMethodNotFound = errors.New("method not found in call graph")

	// ErrInvalidSnapshot is returned when a snapshot cannot be turned into
	// a graph because a signature in it does not parse.
	ErrInvalidSnapshot = errors.New("invalid call graph snapshot")
)
