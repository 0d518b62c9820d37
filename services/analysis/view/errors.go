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
	"errors"
	"fmt"
)

// Sentinel errors for view operations.
var (
	// ErrNotFound is the error every ResolveError wraps.
	ErrNotFound = errors.New("not found in view")

	// ErrNilSupplier is returned by ComputeIfAbsent when no supplier is given.
	ErrNilSupplier = errors.New("module data supplier is nil")
)

// ResolveError reports a declaration that a resolve-or-fail lookup could not
// find.
type ResolveError struct {
	// Kind is "class", "method" or "field".
	Kind string

	// Name is the textual signature that was looked up.
	Name string
}

// Error implements error.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("could not find %s %s in view", e.Kind, e.Name)
}

// Unwrap returns ErrNotFound so callers can test with errors.Is.
func (e *ResolveError) Unwrap() error {
	return ErrNotFound
}
