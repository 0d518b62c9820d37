// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package view provides the read-only program view that analyses query,
// together with a typed per-view cache for derived analysis results.
package view

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ceclin/SootUp/services/analysis/model"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/typehierarchy"
)

// View is a read-only collection of classes and their members.
type View interface {
	// ID identifies this view instance.
	ID() string

	// Classes returns all classes, sorted by fully qualified name.
	Classes() []*model.Class

	// Class looks up a class by type.
	Class(t signature.ClassType) (*model.Class, bool)

	// Method looks up a method in its declaring class.
	Method(sig signature.MethodSignature) (*model.Method, bool)

	// Field looks up a field in its declaring class.
	Field(sig signature.FieldSignature) (*model.Field, bool)

	// Scope returns the scope the view was restricted to, if any.
	Scope() (Scope, bool)

	// TypeHierarchy returns the class hierarchy of the view.
	TypeHierarchy() typehierarchy.TypeHierarchy

	// IdentifierFactory returns the factory used for signatures in this view.
	IdentifierFactory() *signature.IdentifierFactory

	// ModuleData returns the per-view cache for derived results.
	ModuleData() *ModuleDataStore
}

// Scope restricts a view to classes in a set of packages.
type Scope struct {
	// Name describes the scope.
	Name string `json:"name" yaml:"name"`

	// Packages are package prefixes. A class is in scope when its package
	// equals a prefix or is nested below it.
	Packages []string `json:"packages" yaml:"packages"`
}

// Contains reports whether t is in scope. An empty package list admits
// everything.
func (s Scope) Contains(t signature.ClassType) bool {
	if len(s.Packages) == 0 {
		return true
	}
	for _, p := range s.Packages {
		if t.Package == p || strings.HasPrefix(t.Package, p+".") {
			return true
		}
	}
	return false
}

// Option configures a MemoryView.
type Option func(*MemoryView)

// WithScope restricts the view to classes contained in scope.
func WithScope(scope Scope) Option {
	return func(v *MemoryView) {
		v.scope = &scope
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *MemoryView) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithIdentifierFactory sets the identifier factory.
func WithIdentifierFactory(f *signature.IdentifierFactory) Option {
	return func(v *MemoryView) {
		if f != nil {
			v.factory = f
		}
	}
}

var typeHierarchyKey = NewModuleDataKey[typehierarchy.TypeHierarchy]("view.typehierarchy")

// MemoryView is a View over an in-memory class list.
//
// Thread Safety:
//
//	MemoryView is immutable after construction except for its module data
//	store, which is itself safe for concurrent use.
type MemoryView struct {
	id         string
	classes    map[signature.ClassType]*model.Class
	sorted     []*model.Class
	scope      *Scope
	factory    *signature.IdentifierFactory
	moduleData *ModuleDataStore
	logger     *slog.Logger
}

// NewMemoryView creates a view over classes.
//
// Classes outside the configured scope are skipped. When two classes share
// a type, the later one wins.
func NewMemoryView(classes []*model.Class, opts ...Option) *MemoryView {
	v := &MemoryView{
		id:         uuid.NewString(),
		classes:    make(map[signature.ClassType]*model.Class, len(classes)),
		factory:    signature.NewIdentifierFactory(),
		moduleData: NewModuleDataStore(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}

	skipped := 0
	for _, c := range classes {
		if c == nil {
			continue
		}
		if v.scope != nil && !v.scope.Contains(c.Type) {
			skipped++
			continue
		}
		if _, dup := v.classes[c.Type]; dup {
			v.logger.Warn("duplicate class in view", slog.String("class", c.Type.String()))
		}
		v.classes[c.Type] = c
	}

	v.sorted = make([]*model.Class, 0, len(v.classes))
	for _, c := range v.classes {
		v.sorted = append(v.sorted, c)
	}
	sort.Slice(v.sorted, func(i, j int) bool {
		return v.sorted[i].Type.FullyQualifiedName() < v.sorted[j].Type.FullyQualifiedName()
	})

	v.logger.Debug("view created",
		slog.String("view_id", v.id),
		slog.Int("classes", len(v.sorted)),
		slog.Int("skipped_out_of_scope", skipped),
	)
	return v
}

// ID implements View.
func (v *MemoryView) ID() string { return v.id }

// Classes implements View.
func (v *MemoryView) Classes() []*model.Class {
	out := make([]*model.Class, len(v.sorted))
	copy(out, v.sorted)
	return out
}

// Class implements View.
func (v *MemoryView) Class(t signature.ClassType) (*model.Class, bool) {
	c, ok := v.classes[t]
	return c, ok
}

// Method implements View.
func (v *MemoryView) Method(sig signature.MethodSignature) (*model.Method, bool) {
	c, ok := v.classes[sig.DeclClass]
	if !ok {
		return nil, false
	}
	return c.Method(sig)
}

// Field implements View.
func (v *MemoryView) Field(sig signature.FieldSignature) (*model.Field, bool) {
	c, ok := v.classes[sig.DeclClass]
	if !ok {
		return nil, false
	}
	return c.Field(sig)
}

// Scope implements View.
func (v *MemoryView) Scope() (Scope, bool) {
	if v.scope == nil {
		return Scope{}, false
	}
	return *v.scope, true
}

// TypeHierarchy implements View. The hierarchy is built on first use and
// cached in module data.
func (v *MemoryView) TypeHierarchy() typehierarchy.TypeHierarchy {
	h, _ := ComputeIfAbsent(context.Background(), v.moduleData, typeHierarchyKey,
		func(context.Context) (typehierarchy.TypeHierarchy, error) {
			return typehierarchy.New(v.sorted), nil
		})
	return h
}

// IdentifierFactory implements View.
func (v *MemoryView) IdentifierFactory() *signature.IdentifierFactory { return v.factory }

// ModuleData implements View.
func (v *MemoryView) ModuleData() *ModuleDataStore { return v.moduleData }

// ClassOrErr resolves a class or returns a *ResolveError.
func ClassOrErr(v View, t signature.ClassType) (*model.Class, error) {
	c, ok := v.Class(t)
	if !ok {
		return nil, &ResolveError{Kind: "class", Name: t.String()}
	}
	return c, nil
}

// MethodOrErr resolves a method or returns a *ResolveError.
func MethodOrErr(v View, sig signature.MethodSignature) (*model.Method, error) {
	m, ok := v.Method(sig)
	if !ok {
		return nil, &ResolveError{Kind: "method", Name: sig.String()}
	}
	return m, nil
}

// FieldOrErr resolves a field or returns a *ResolveError.
func FieldOrErr(v View, sig signature.FieldSignature) (*model.Field, error) {
	f, ok := v.Field(sig)
	if !ok {
		return nil, &ResolveError{Kind: "field", Name: sig.String()}
	}
	return f, nil
}

// PutModuleData stores value under key in v's module data.
func PutModuleData[T any](v View, key *ModuleDataKey[T], value T) {
	Put(v.ModuleData(), key, value)
}

// GetModuleData returns the value under key in v's module data.
func GetModuleData[T any](v View, key *ModuleDataKey[T]) (T, bool) {
	return Get(v.ModuleData(), key)
}

// ComputeModuleDataIfAbsent is ComputeIfAbsent on v's module data.
func ComputeModuleDataIfAbsent[T any](ctx context.Context, v View, key *ModuleDataKey[T], supplier Supplier[T]) (T, error) {
	return ComputeIfAbsent(ctx, v.ModuleData(), key, supplier)
}
