// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/signature"
)

const (
	keyPrefix     = "callgraph/"
	maxNameLength = 200
)

// Record is a stored call graph snapshot.
type Record struct {
	Name        string             `json:"name"`
	Fingerprint string             `json:"fingerprint"`
	Stats       callgraph.Stats    `json:"stats"`
	StoredAt    time.Time          `json:"stored_at"`
	Snapshot    callgraph.Snapshot `json:"snapshot"`
}

// Summary describes a stored snapshot without its contents.
type Summary struct {
	Name        string          `json:"name"`
	Fingerprint string          `json:"fingerprint"`
	Stats       callgraph.Stats `json:"stats"`
	StoredAt    time.Time       `json:"stored_at"`
}

// SnapshotStore saves and loads call graphs by name.
//
// Thread Safety: Safe for concurrent use.
type SnapshotStore struct {
	db      *DB
	factory *signature.IdentifierFactory
	logger  *slog.Logger
	now     func() time.Time
}

// NewSnapshotStore creates a store on an open database.
func NewSnapshotStore(db *DB, factory *signature.IdentifierFactory, logger *slog.Logger) *SnapshotStore {
	if factory == nil {
		factory = signature.NewIdentifierFactory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		db:      db,
		factory: factory,
		logger:  logger.With(slog.String("component", "snapshot_store")),
		now:     time.Now,
	}
}

// ValidateName checks that name can be used as a snapshot key.
//
// Names are non-empty, at most 200 bytes, and contain no '/' or whitespace.
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, "/ \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func recordKey(name string) []byte {
	return []byte(keyPrefix + name)
}

func (s *SnapshotStore) startSpan(ctx context.Context, op, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "SnapshotStore."+op,
		trace.WithAttributes(
			attribute.String("snapshot.operation", op),
			attribute.String("snapshot.name", name),
		),
	)
}

func finish(span trace.Span, op string, start time.Time, err error) {
	snapshotOps.WithLabelValues(op, outcome(err)).Inc()
	snapshotOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Put stores g under name, replacing any previous snapshot.
//
// Outputs:
//
//	Summary - What was stored.
//	error - ErrInvalidName, or a database or encoding failure.
func (s *SnapshotStore) Put(ctx context.Context, name string, g *callgraph.Graph) (_ Summary, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "put", name)
	defer func() { finish(span, "put", start, err) }()

	if err := ValidateName(name); err != nil {
		return Summary{}, err
	}

	rec := Record{
		Name:        name,
		Fingerprint: g.Fingerprint(),
		Stats:       g.Stats(),
		StoredAt:    s.now().UTC(),
		Snapshot:    g.Snapshot(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Summary{}, fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	snapshotBytes.Observe(float64(len(data)))

	err = s.db.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(recordKey(name), data)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("store snapshot %s: %w", name, err)
	}

	s.logger.Info("snapshot stored",
		slog.String("name", name),
		slog.String("fingerprint", rec.Fingerprint),
		slog.Int("methods", rec.Stats.Methods),
		slog.Int("calls", rec.Stats.Calls),
	)
	return rec.summary(), nil
}

// Get returns the record stored under name.
func (s *SnapshotStore) Get(ctx context.Context, name string) (_ Record, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "get", name)
	defer func() { finish(span, "get", start, err) }()

	if err := ValidateName(name); err != nil {
		return Record{}, err
	}

	var rec Record
	err = s.db.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Load reads the snapshot stored under name and rebuilds the graph.
//
// The rebuilt graph's fingerprint must equal the stored one.
func (s *SnapshotStore) Load(ctx context.Context, name string) (*callgraph.Graph, error) {
	rec, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := callgraph.FromSnapshot(rec.Snapshot, s.factory)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	if got := g.Fingerprint(); got != rec.Fingerprint {
		return nil, fmt.Errorf("%w: %s: stored %s, rebuilt %s", ErrFingerprintMismatch, name, rec.Fingerprint, got)
	}
	return g, nil
}

// List returns summaries of all stored snapshots, ordered by name.
func (s *SnapshotStore) List(ctx context.Context) (_ []Summary, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "list", "")
	defer func() { finish(span, "list", start, err) }()

	var out []Summary
	err = s.db.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec.summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the snapshot stored under name.
func (s *SnapshotStore) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "delete", name)
	defer func() { finish(span, "delete", start, err) }()

	if err := ValidateName(name); err != nil {
		return err
	}

	return s.db.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
			}
			return err
		}
		return txn.Delete(recordKey(name))
	})
}

func (r Record) summary() Summary {
	return Summary{
		Name:        r.Name,
		Fingerprint: r.Fingerprint,
		Stats:       r.Stats,
		StoredAt:    r.StoredAt,
	}
}
