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
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

// ModuleDataKey is a token for storing one value of type T in a view.
//
// Every key created with NewModuleDataKey is distinct, even when two keys
// share a name, and can only store and retrieve values of type T. Packages
// declare their keys once as package-level variables:
//
//	var summaryKey = view.NewModuleDataKey[*Summary]("mypkg.summary")
//
//	s, err := view.ComputeModuleDataIfAbsent(ctx, v, summaryKey, buildSummary)
type ModuleDataKey[T any] struct {
	id   string
	name string
}

// NewModuleDataKey creates a key bound to type T.
//
// The name is used in logs, spans and errors only; identity comes from a
// random ID assigned here.
func NewModuleDataKey[T any](name string) *ModuleDataKey[T] {
	return &ModuleDataKey[T]{
		id:   uuid.NewString(),
		name: name,
	}
}

// Name returns the descriptive name given at creation.
func (k *ModuleDataKey[T]) Name() string {
	return k.name
}

// String returns the name and ID.
func (k *ModuleDataKey[T]) String() string {
	return k.name + "#" + k.id
}

// Supplier computes module data on a cache miss.
type Supplier[T any] func(ctx context.Context) (T, error)

// ModuleDataStore holds per-view module data.
//
// Thread Safety:
//
//	ModuleDataStore is safe for concurrent use. ComputeIfAbsent runs at
//	most one supplier per key at a time; concurrent first callers wait for
//	and share that single result.
type ModuleDataStore struct {
	mu     sync.RWMutex
	data   map[string]any
	flight singleflight.Group

	// Stats
	hits         int64
	misses       int64
	computations int64
}

// NewModuleDataStore creates an empty store.
func NewModuleDataStore() *ModuleDataStore {
	return &ModuleDataStore{
		data: make(map[string]any),
	}
}

// Len returns the number of stored values.
func (s *ModuleDataStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// StoreStats reports store activity.
type StoreStats struct {
	Hits         int64
	Misses       int64
	Computations int64
}

// Stats returns hit, miss and computation counts.
func (s *ModuleDataStore) Stats() StoreStats {
	return StoreStats{
		Hits:         atomic.LoadInt64(&s.hits),
		Misses:       atomic.LoadInt64(&s.misses),
		Computations: atomic.LoadInt64(&s.computations),
	}
}

func (s *ModuleDataStore) load(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[id]
	return v, ok
}

func (s *ModuleDataStore) store(id string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = value
}

// Put stores value under key, replacing any previous value.
func Put[T any](s *ModuleDataStore, key *ModuleDataKey[T], value T) {
	s.store(key.id, value)
}

// Get returns the value stored under key.
func Get[T any](s *ModuleDataStore, key *ModuleDataKey[T]) (T, bool) {
	v, ok := s.load(key.id)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// ComputeIfAbsent returns the value under key, computing and storing it
// with supplier when absent.
//
// Description:
//
//	The fast path is a read-locked lookup. On a miss, a singleflight group
//	keyed by the key's ID runs the supplier; the stored value is checked
//	again inside the flight so a value stored by an earlier flight is never
//	recomputed. Concurrent first callers therefore observe exactly one
//	supplier invocation. Supplier errors are returned to every waiting
//	caller and are not cached.
//
// Inputs:
//
//	ctx - Passed to the supplier of the first caller; also used for spans.
//	s - The store.
//	key - The typed key.
//	supplier - Computes the value. Must not be nil.
//
// Outputs:
//
//	T - The stored or computed value.
//	error - ErrNilSupplier, or the supplier's error.
func ComputeIfAbsent[T any](ctx context.Context, s *ModuleDataStore, key *ModuleDataKey[T], supplier Supplier[T]) (T, error) {
	var zero T
	if supplier == nil {
		return zero, fmt.Errorf("%w: %s", ErrNilSupplier, key.name)
	}

	start := time.Now()
	if v, ok := Get(s, key); ok {
		atomic.AddInt64(&s.hits, 1)
		recordModuleDataLookup(ctx, key.name, true, time.Since(start))
		return v, nil
	}
	atomic.AddInt64(&s.misses, 1)
	recordModuleDataLookup(ctx, key.name, false, time.Since(start))

	result, err, _ := s.flight.Do(key.id, func() (interface{}, error) {
		if v, ok := s.load(key.id); ok {
			return v, nil
		}

		ctx, span := startModuleDataSpan(ctx, "ComputeIfAbsent", key.name)
		defer span.End()

		v, err := supplier(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		atomic.AddInt64(&s.computations, 1)
		recordModuleDataComputation(ctx, key.name)
		s.store(key.id, v)
		return v, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("module data %s: stored value has type %T", key.name, result)
	}
	return typed, nil
}
