// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package signature

import (
	"fmt"
	"strings"
)

// IdentifierFactory constructs and parses signatures.
//
// The factory is stateless; a View hands out one instance so callers do not
// build signatures through ad-hoc string handling.
type IdentifierFactory struct{}

// NewIdentifierFactory returns a ready-to-use factory.
func NewIdentifierFactory() *IdentifierFactory {
	return &IdentifierFactory{}
}

// ClassType splits a fully-qualified name at its last dot.
func (f *IdentifierFactory) ClassType(fqn string) ClassType {
	fqn = strings.TrimSpace(fqn)
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return ClassType{Package: fqn[:i], Name: fqn[i+1:]}
	}
	return ClassType{Name: fqn}
}

// MethodSignature builds a method signature.
//
// Parameter type names must not contain commas; JVM type names never do.
func (f *IdentifierFactory) MethodSignature(decl ClassType, name string, params []string, returnType string) MethodSignature {
	trimmed := make([]string, len(params))
	for i, p := range params {
		trimmed[i] = strings.TrimSpace(p)
	}
	return MethodSignature{
		DeclClass:  decl,
		Name:       name,
		ReturnType: returnType,
		params:     strings.Join(trimmed, ","),
	}
}

// FieldSignature builds a field signature.
func (f *IdentifierFactory) FieldSignature(decl ClassType, name, fieldType string) FieldSignature {
	return FieldSignature{DeclClass: decl, Name: name, Type: fieldType}
}

// ParseMethodSignature parses the textual form "<pkg.Class: ret name(p1,p2)>".
//
// Outputs:
//
//	MethodSignature - The parsed signature.
//	error - ErrMalformedSignature wrapped with the offending input.
func (f *IdentifierFactory) ParseMethodSignature(s string) (MethodSignature, error) {
	decl, member, err := splitMember(s)
	if err != nil {
		return MethodSignature{}, err
	}

	open := strings.IndexByte(member, '(')
	if open < 0 || !strings.HasSuffix(member, ")") {
		return MethodSignature{}, fmt.Errorf("%w: missing parameter list in %q", ErrMalformedSignature, s)
	}
	head := strings.TrimSpace(member[:open])
	sp := strings.LastIndexByte(head, ' ')
	if sp <= 0 || sp == len(head)-1 {
		return MethodSignature{}, fmt.Errorf("%w: expected \"ret name\" in %q", ErrMalformedSignature, s)
	}

	var params []string
	if inner := strings.TrimSpace(member[open+1 : len(member)-1]); inner != "" {
		params = strings.Split(inner, ",")
		for _, p := range params {
			if strings.TrimSpace(p) == "" {
				return MethodSignature{}, fmt.Errorf("%w: empty parameter type in %q", ErrMalformedSignature, s)
			}
		}
	}

	return f.MethodSignature(decl, head[sp+1:], params, strings.TrimSpace(head[:sp])), nil
}

// ParseFieldSignature parses the textual form "<pkg.Class: type name>".
func (f *IdentifierFactory) ParseFieldSignature(s string) (FieldSignature, error) {
	decl, member, err := splitMember(s)
	if err != nil {
		return FieldSignature{}, err
	}
	parts := strings.Fields(member)
	if len(parts) != 2 || strings.ContainsAny(member, "()") {
		return FieldSignature{}, fmt.Errorf("%w: expected \"type name\" in %q", ErrMalformedSignature, s)
	}
	return f.FieldSignature(decl, parts[1], parts[0]), nil
}

// splitMember strips the angle brackets and separates "<decl: member>".
func splitMember(s string) (ClassType, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return ClassType{}, "", fmt.Errorf("%w: %q is not enclosed in <>", ErrMalformedSignature, s)
	}
	body := s[1 : len(s)-1]
	colon := strings.Index(body, ": ")
	if colon <= 0 {
		return ClassType{}, "", fmt.Errorf("%w: missing declaring class in %q", ErrMalformedSignature, s)
	}
	member := strings.TrimSpace(body[colon+2:])
	if member == "" {
		return ClassType{}, "", fmt.Errorf("%w: missing member in %q", ErrMalformedSignature, s)
	}
	return (&IdentifierFactory{}).ClassType(body[:colon]), member, nil
}
