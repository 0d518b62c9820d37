// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package typehierarchy resolves subtype relations between the classes of
// a program.
//
// Call-graph construction algorithms consult the hierarchy to find the
// possible dispatch targets of a virtual call. The hierarchy only knows the
// classes it was built from; types outside that set have no supertypes and
// no subtypes.
//
// # Thread Safety
//
// A ViewTypeHierarchy is immutable after New returns and safe for
// concurrent reads.
package typehierarchy

import (
	"slices"

	"github.com/ceclin/SootUp/services/analysis/model"
	"github.com/ceclin/SootUp/services/analysis/signature"
)

// TypeHierarchy answers subtype queries over class types.
type TypeHierarchy interface {
	// Contains reports whether t is a class of the program.
	Contains(t signature.ClassType) bool

	// IsInterface reports whether t is a known interface.
	IsInterface(t signature.ClassType) bool

	// SuperClassOf returns the direct superclass of t.
	SuperClassOf(t signature.ClassType) (signature.ClassType, bool)

	// SuperClassesOf returns the superclass chain of t, nearest first.
	SuperClassesOf(t signature.ClassType) []signature.ClassType

	// ImplementedInterfacesOf returns every interface t implements,
	// directly or through superclasses and superinterfaces.
	ImplementedInterfacesOf(t signature.ClassType) []signature.ClassType

	// DirectSubtypesOf returns the classes and interfaces that name t as
	// their superclass or as a direct interface.
	DirectSubtypesOf(t signature.ClassType) []signature.ClassType

	// SubtypesOf returns the transitive closure of DirectSubtypesOf.
	SubtypesOf(t signature.ClassType) []signature.ClassType

	// IsSubtype reports whether candidate is a proper subtype of supertype.
	IsSubtype(supertype, candidate signature.ClassType) bool
}

// ViewTypeHierarchy is a TypeHierarchy computed from class declarations.
type ViewTypeHierarchy struct {
	classes        map[signature.ClassType]*model.Class
	directSubtypes map[signature.ClassType][]signature.ClassType
}

var _ TypeHierarchy = (*ViewTypeHierarchy)(nil)

// New builds the hierarchy of the given classes.
//
// Description:
//
//	Indexes every class by type and records the reverse superclass and
//	interface edges. Later declarations of the same type replace earlier
//	ones. Slices returned by queries are sorted by fully-qualified name.
//
// Inputs:
//
//	classes - Class declarations. Borrowed; not copied.
func New(classes []*model.Class) *ViewTypeHierarchy {
	h := &ViewTypeHierarchy{
		classes:        make(map[signature.ClassType]*model.Class, len(classes)),
		directSubtypes: make(map[signature.ClassType][]signature.ClassType),
	}
	for _, c := range classes {
		if c != nil {
			h.classes[c.Type] = c
		}
	}
	for _, c := range h.classes {
		if c.SuperClass != nil {
			h.directSubtypes[*c.SuperClass] = append(h.directSubtypes[*c.SuperClass], c.Type)
		}
		for _, iface := range c.Interfaces {
			h.directSubtypes[iface] = append(h.directSubtypes[iface], c.Type)
		}
	}
	for t := range h.directSubtypes {
		sortTypes(h.directSubtypes[t])
	}
	return h
}

// Contains reports whether t is a class of the program.
func (h *ViewTypeHierarchy) Contains(t signature.ClassType) bool {
	_, ok := h.classes[t]
	return ok
}

// IsInterface reports whether t is a known interface.
func (h *ViewTypeHierarchy) IsInterface(t signature.ClassType) bool {
	c, ok := h.classes[t]
	return ok && c.IsInterface()
}

// SuperClassOf returns the direct superclass of t.
func (h *ViewTypeHierarchy) SuperClassOf(t signature.ClassType) (signature.ClassType, bool) {
	c, ok := h.classes[t]
	if !ok || c.SuperClass == nil {
		return signature.ClassType{}, false
	}
	return *c.SuperClass, true
}

// SuperClassesOf returns the superclass chain of t, nearest first.
//
// The chain stops at the first superclass that is not declared in the
// program, after including it. A cyclic chain is cut at the repeat.
func (h *ViewTypeHierarchy) SuperClassesOf(t signature.ClassType) []signature.ClassType {
	var chain []signature.ClassType
	seen := map[signature.ClassType]bool{t: true}
	for cur := t; ; {
		super, ok := h.SuperClassOf(cur)
		if !ok || seen[super] {
			return chain
		}
		seen[super] = true
		chain = append(chain, super)
		cur = super
	}
}

// ImplementedInterfacesOf returns every interface t implements.
func (h *ViewTypeHierarchy) ImplementedInterfacesOf(t signature.ClassType) []signature.ClassType {
	seen := make(map[signature.ClassType]bool)
	var out []signature.ClassType

	var visit func(signature.ClassType)
	visit = func(ct signature.ClassType) {
		c, ok := h.classes[ct]
		if !ok {
			return
		}
		for _, iface := range c.Interfaces {
			if seen[iface] {
				continue
			}
			seen[iface] = true
			out = append(out, iface)
			visit(iface)
		}
	}

	visit(t)
	for _, super := range h.SuperClassesOf(t) {
		visit(super)
	}
	sortTypes(out)
	return out
}

// DirectSubtypesOf returns the direct subclasses, subinterfaces and
// implementers of t.
func (h *ViewTypeHierarchy) DirectSubtypesOf(t signature.ClassType) []signature.ClassType {
	return slices.Clone(h.directSubtypes[t])
}

// SubtypesOf returns every proper subtype of t.
func (h *ViewTypeHierarchy) SubtypesOf(t signature.ClassType) []signature.ClassType {
	seen := map[signature.ClassType]bool{t: true}
	var out []signature.ClassType
	queue := []signature.ClassType{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, sub := range h.directSubtypes[cur] {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			out = append(out, sub)
			queue = append(queue, sub)
		}
	}
	sortTypes(out)
	return out
}

// IsSubtype reports whether candidate is a proper subtype of supertype.
func (h *ViewTypeHierarchy) IsSubtype(supertype, candidate signature.ClassType) bool {
	if supertype == candidate {
		return false
	}
	if slices.Contains(h.SuperClassesOf(candidate), supertype) {
		return true
	}
	return slices.Contains(h.ImplementedInterfacesOf(candidate), supertype)
}

func sortTypes(ts []signature.ClassType) {
	slices.SortFunc(ts, func(a, b signature.ClassType) int {
		switch fa, fb := a.FullyQualifiedName(), b.FullyQualifiedName(); {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	})
}
