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
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/signature"
)

var factory = signature.NewIdentifierFactory()

func openStore(t *testing.T) *SnapshotStore {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotStore(db, factory, nil)
}

func sampleGraph(t *testing.T) *callgraph.Graph {
	t.Helper()
	cls := factory.ClassType("app.Main")
	main := factory.MethodSignature(cls, "main", []string{"java.lang.String[]"}, "void")
	helper := factory.MethodSignature(cls, "helper", []string{"int"}, "int")

	g := callgraph.New()
	g.AddMethod(main)
	g.AddMethod(helper)
	require.NoError(t, g.AddCall(main, helper))
	require.NoError(t, g.AddCall(helper, helper))
	return g
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.InMemory())
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	})
	require.NoError(t, err)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.ErrorIs(t, err, ErrPathRequired)
}

func TestOpen_RejectsDiscardRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.GCDiscardRatio = 0
	_, err := Open(cfg)
	assert.ErrorIs(t, err, ErrInvalidDiscardRatio)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.SyncWrites)
	assert.False(t, cfg.InMemory)
	assert.Equal(t, 5*time.Minute, cfg.GCInterval)
	assert.Equal(t, 0.5, cfg.GCDiscardRatio)
}

func TestSnapshotStore_PutLoad(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	g := sampleGraph(t)

	sum, err := store.Put(ctx, "sample", g)
	require.NoError(t, err)
	assert.Equal(t, "sample", sum.Name)
	assert.Equal(t, g.Fingerprint(), sum.Fingerprint)
	assert.Equal(t, 2, sum.Stats.Methods)
	assert.Equal(t, 2, sum.Stats.Calls)
	assert.False(t, sum.StoredAt.IsZero())

	loaded, err := store.Load(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, g.ExportAsDOT(), loaded.ExportAsDOT())
	assert.Equal(t, g.String(), loaded.String())
}

func TestSnapshotStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Path = dir
	ctx := context.Background()
	g := sampleGraph(t)

	db, err := Open(cfg)
	require.NoError(t, err)
	_, err = NewSnapshotStore(db, factory, nil).Put(ctx, "persisted", g)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := Open(cfg)
	require.NoError(t, err)
	defer db2.Close()

	loaded, err := NewSnapshotStore(db2, factory, nil).Load(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, g.Fingerprint(), loaded.Fingerprint())
}

func TestSnapshotStore_GetMissing(t *testing.T) {
	store := openStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestSnapshotStore_ListAndDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	g := sampleGraph(t)

	_, err := store.Put(ctx, "b", g)
	require.NoError(t, err)
	_, err = store.Put(ctx, "a", callgraph.New())
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, 0, list[0].Stats.Methods)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrSnapshotNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Name)
}

func TestSnapshotStore_Overwrite(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "g", callgraph.New())
	require.NoError(t, err)
	_, err = store.Put(ctx, "g", sampleGraph(t))
	require.NoError(t, err)

	rec, err := store.Get(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Stats.Methods)
	assert.Len(t, rec.Snapshot.Methods, 2)
}

func TestSnapshotStore_FingerprintMismatch(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "g", sampleGraph(t))
	require.NoError(t, err)

	rec, err := store.Get(ctx, "g")
	require.NoError(t, err)
	rec.Fingerprint = "0000000000000000"
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey("g"), data)
	}))

	_, err = store.Load(ctx, "g")
	assert.ErrorIs(t, err, ErrFingerprintMismatch)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("app-v1.2"))
	assert.ErrorIs(t, ValidateName(""), ErrInvalidName)
	assert.ErrorIs(t, ValidateName("a/b"), ErrInvalidName)
	assert.ErrorIs(t, ValidateName("a b"), ErrInvalidName)

	store := openStore(t)
	_, err := store.Put(context.Background(), "bad name", callgraph.New())
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSnapshotStore_CancelledContext(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "g", callgraph.New())
	assert.ErrorIs(t, err, context.Canceled)
}
