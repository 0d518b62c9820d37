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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/storage/badger"
)

// ErrGraphNotFound is returned when no graph is registered under a name.
var ErrGraphNotFound = errors.New("call graph not found")

// Registry holds named call graphs in memory, backed by an optional
// snapshot store.
//
// Graphs are loaded from the store on first access and kept in memory
// afterwards. Registered graphs are treated as read-only.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	graphs map[string]*callgraph.Graph
	store  *badger.SnapshotStore
	logger *slog.Logger
}

// NewRegistry creates a registry. store may be nil for a memory-only
// registry.
func NewRegistry(store *badger.SnapshotStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		graphs: make(map[string]*callgraph.Graph),
		store:  store,
		logger: logger,
	}
}

// Put registers g under name and persists it when a store is configured.
func (r *Registry) Put(ctx context.Context, name string, g *callgraph.Graph) error {
	if err := badger.ValidateName(name); err != nil {
		return err
	}
	if r.store != nil {
		if _, err := r.store.Put(ctx, name, g); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.graphs[name] = g
	r.mu.Unlock()
	return nil
}

// Get returns the graph registered under name.
func (r *Registry) Get(ctx context.Context, name string) (*callgraph.Graph, error) {
	r.mu.RLock()
	g, ok := r.graphs[name]
	r.mu.RUnlock()
	if ok {
		return g, nil
	}
	if r.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}

	g, err := r.store.Load(ctx, name)
	if errors.Is(err, badger.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.graphs[name]; ok {
		g = existing
	} else {
		r.graphs[name] = g
	}
	r.mu.Unlock()
	r.logger.Debug("call graph loaded from store", slog.String("name", name))
	return g, nil
}

// Delete removes name from memory and from the store.
func (r *Registry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	_, inMemory := r.graphs[name]
	delete(r.graphs, name)
	r.mu.Unlock()

	if r.store == nil {
		if !inMemory {
			return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
		}
		return nil
	}
	err := r.store.Delete(ctx, name)
	if errors.Is(err, badger.ErrSnapshotNotFound) {
		if inMemory {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return err
}

// Names returns every known graph name, sorted.
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	r.mu.RLock()
	for name := range r.graphs {
		seen[name] = struct{}{}
	}
	r.mu.RUnlock()

	if r.store != nil {
		stored, err := r.store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range stored {
			seen[s.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
