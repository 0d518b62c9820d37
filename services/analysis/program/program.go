// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package program decodes program description files into views and call
// graphs.
//
// A program file lists declared classes with their members and the calls
// observed between methods:
//
//	scope:
//	  name: app
//	  packages: [app]
//	classes:
//	  - name: app.Main
//	    super: java.lang.Object
//	    modifiers: [public]
//	    methods:
//	      - signature: "<app.Main: void main(java.lang.String[])>"
//	        modifiers: [public, static]
//	calls:
//	  - from: "<app.Main: void main(java.lang.String[])>"
//	    to: "<app.Worker: void run()>"
//
// Files are YAML; JSON documents decode the same way.
package program

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/model"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/view"
)

var (
	// ErrInvalidProgram is returned for a malformed program file.
	ErrInvalidProgram = errors.New("invalid program")

	// ErrUnknownModifier is returned for an unrecognized modifier name.
	ErrUnknownModifier = errors.New("unknown modifier")
)

// File is the decoded form of a program file.
type File struct {
	Scope   *view.Scope            `yaml:"scope,omitempty"`
	Classes []ClassDecl            `yaml:"classes"`
	Calls   []callgraph.CallRecord `yaml:"calls"`
}

// ClassDecl declares one class.
type ClassDecl struct {
	Name       string       `yaml:"name"`
	Super      string       `yaml:"super,omitempty"`
	Interfaces []string     `yaml:"interfaces,omitempty"`
	Modifiers  []string     `yaml:"modifiers,omitempty"`
	Methods    []MemberDecl `yaml:"methods,omitempty"`
	Fields     []MemberDecl `yaml:"fields,omitempty"`
}

// MemberDecl declares a method or field by textual signature.
type MemberDecl struct {
	Signature string   `yaml:"signature"`
	Modifiers []string `yaml:"modifiers,omitempty"`
}

// Program is a decoded and resolved program file.
type Program struct {
	file    File
	factory *signature.IdentifierFactory
	classes []*model.Class
}

// Decode parses a program file.
func Decode(data []byte, factory *signature.IdentifierFactory) (*Program, error) {
	if factory == nil {
		factory = signature.NewIdentifierFactory()
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}

	classes := make([]*model.Class, 0, len(f.Classes))
	for i, decl := range f.Classes {
		c, err := resolveClass(decl, factory)
		if err != nil {
			return nil, fmt.Errorf("%w: class %d (%s): %w", ErrInvalidProgram, i, decl.Name, err)
		}
		classes = append(classes, c)
	}

	return &Program{file: f, factory: factory, classes: classes}, nil
}

// Classes returns the declared classes.
func (p *Program) Classes() []*model.Class {
	return p.classes
}

// View builds a MemoryView over the declared classes. The file's scope is
// applied unless opts override it.
func (p *Program) View(opts ...view.Option) *view.MemoryView {
	base := []view.Option{view.WithIdentifierFactory(p.factory)}
	if p.file.Scope != nil {
		base = append(base, view.WithScope(*p.file.Scope))
	}
	return view.NewMemoryView(p.classes, append(base, opts...)...)
}

// Builder returns a view.CallGraphBuilder that adds every method declared
// in the view, then every call listed in the file whose endpoints both
// resolve in the view. Calls leaving the view are skipped.
func (p *Program) Builder(opts ...callgraph.Option) view.CallGraphBuilder {
	return func(ctx context.Context, v view.View) (*callgraph.Graph, error) {
		g := callgraph.New(opts...)
		for _, c := range v.Classes() {
			for _, m := range c.Methods {
				g.AddMethod(m.Signature)
			}
		}

		for i, rec := range p.file.Calls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			from, err := p.factory.ParseMethodSignature(rec.From)
			if err != nil {
				return nil, fmt.Errorf("%w: call %d: %w", ErrInvalidProgram, i, err)
			}
			to, err := p.factory.ParseMethodSignature(rec.To)
			if err != nil {
				return nil, fmt.Errorf("%w: call %d: %w", ErrInvalidProgram, i, err)
			}
			if _, err := view.MethodOrErr(v, from); err != nil {
				continue
			}
			if _, err := view.MethodOrErr(v, to); err != nil {
				continue
			}
			if err := g.AddCall(from, to); err != nil {
				return nil, err
			}
		}
		return g, nil
	}
}

// CallGraph returns the call graph of v, building it with Builder on first
// use and memoizing it in v's module data.
func (p *Program) CallGraph(ctx context.Context, v view.View, opts ...callgraph.Option) (*callgraph.Graph, error) {
	return view.CallGraphOf(ctx, v, p.Builder(opts...))
}

func resolveClass(decl ClassDecl, factory *signature.IdentifierFactory) (*model.Class, error) {
	if strings.TrimSpace(decl.Name) == "" {
		return nil, errors.New("missing name")
	}
	mods, err := ParseModifiers(decl.Modifiers)
	if err != nil {
		return nil, err
	}

	c := &model.Class{
		Type:      factory.ClassType(decl.Name),
		Modifiers: mods,
	}
	if decl.Super != "" {
		super := factory.ClassType(decl.Super)
		c.SuperClass = &super
	}
	for _, iface := range decl.Interfaces {
		c.Interfaces = append(c.Interfaces, factory.ClassType(iface))
	}

	for _, md := range decl.Methods {
		sig, err := factory.ParseMethodSignature(md.Signature)
		if err != nil {
			return nil, err
		}
		if sig.DeclClass != c.Type {
			return nil, fmt.Errorf("method %s is not declared in %s", sig, c.Type)
		}
		mods, err := ParseModifiers(md.Modifiers)
		if err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, &model.Method{Signature: sig, Modifiers: mods})
	}

	for _, fd := range decl.Fields {
		sig, err := factory.ParseFieldSignature(fd.Signature)
		if err != nil {
			return nil, err
		}
		if sig.DeclClass != c.Type {
			return nil, fmt.Errorf("field %s is not declared in %s", sig, c.Type)
		}
		mods, err := ParseModifiers(fd.Modifiers)
		if err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, &model.Field{Signature: sig, Modifiers: mods})
	}
	return c, nil
}

// ParseModifiers converts modifier names to a Modifiers set.
func ParseModifiers(names []string) (model.Modifiers, error) {
	var mods model.Modifiers
	for _, name := range names {
		m, ok := model.ModifierByName(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
		}
		mods |= m
	}
	return mods, nil
}
