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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/storage/badger"
	"github.com/ceclin/SootUp/services/analysis/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	sigMain = "<app.Main: void main(java.lang.String[])>"
	sigA    = "<app.Worker: void a()>"
	sigB    = "<app.Worker: void b()>"
)

func mutualRecursion() callgraph.Snapshot {
	return callgraph.Snapshot{
		Methods: []string{sigMain, sigA, sigB},
		Calls: []callgraph.CallRecord{
			{From: sigMain, To: sigA},
			{From: sigA, To: sigB},
			{From: sigB, To: sigA},
		},
	}
}

func setupRouter(t *testing.T, store *badger.SnapshotStore) *gin.Engine {
	t.Helper()
	h := NewHandlers(NewRegistry(store, nil))
	return NewRouter(h, "test", 1<<20, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPutAndQueryGraph(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodPut, "/v1/callgraphs/demo", mutualRecursion())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode[GraphSummary](t, w)
	assert.Equal(t, "demo", sum.Name)
	assert.Equal(t, 3, sum.Stats.Methods)
	assert.Equal(t, 3, sum.Stats.Calls)

	w = do(t, router, http.MethodGet, "/v1/callgraphs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"demo"}, decode[ListGraphsResponse](t, w).Graphs)

	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/dot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "strict digraph ObjectGraph {\n"+
		"\t\"<app.Main: void main(java.lang.String[])>\" -> \"<app.Worker: void a()>\";\n"+
		"\t\"<app.Worker: void a()>\" -> \"<app.Worker: void b()>\";\n"+
		"\t\"<app.Worker: void b()>\" -> \"<app.Worker: void a()>\";\n"+
		"}", w.Body.String())

	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/dump", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "GraphBasedCallGraph(3):\n"))

	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sum.Fingerprint, decode[GraphSummary](t, w).Fingerprint)

	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[callgraph.Snapshot](t, w)
	assert.Len(t, snap.Methods, 3)
	assert.Len(t, snap.Calls, 3)
}

func TestCalls(t *testing.T) {
	router := setupRouter(t, nil)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/v1/callgraphs/demo", mutualRecursion()).Code)

	q := url.Values{"method": {sigA}}
	w := do(t, router, http.MethodGet, "/v1/callgraphs/demo/calls?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[CallsResponse](t, w)
	assert.Equal(t, "out", resp.Direction)
	assert.Equal(t, []string{sigB}, resp.Methods)

	q.Set("direction", "in")
	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/calls?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{sigMain, sigB}, decode[CallsResponse](t, w).Methods)

	q.Set("direction", "sideways")
	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/calls?"+q.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	q = url.Values{"method": {"<app.Worker: void c()>"}}
	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/calls?"+q.Encode(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "METHOD_NOT_FOUND", decode[ErrorResponse](t, w).Code)

	q = url.Values{"method": {"not a signature"}}
	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/calls?"+q.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContainsCall(t *testing.T) {
	router := setupRouter(t, nil)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/v1/callgraphs/demo", mutualRecursion()).Code)

	q := url.Values{"from": {sigA}, "to": {sigB}}
	w := do(t, router, http.MethodGet, "/v1/callgraphs/demo/contains?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ContainsCallResponse](t, w).Contains)

	q = url.Values{"from": {sigMain}, "to": {sigB}}
	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo/contains?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[ContainsCallResponse](t, w).Contains)
}

func TestUnknownGraph(t *testing.T) {
	router := setupRouter(t, nil)

	for _, path := range []string{"/v1/callgraphs/missing", "/v1/callgraphs/missing/dot", "/v1/callgraphs/missing/dump"} {
		w := do(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "GRAPH_NOT_FOUND", decode[ErrorResponse](t, w).Code)
	}
	w := do(t, router, http.MethodDelete, "/v1/callgraphs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutGraph_Invalid(t *testing.T) {
	router := setupRouter(t, nil)

	bad := callgraph.Snapshot{
		Methods: []string{sigA},
		Calls:   []callgraph.CallRecord{{From: sigA, To: sigB}},
	}
	w := do(t, router, http.MethodPut, "/v1/callgraphs/demo", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_SNAPSHOT", decode[ErrorResponse](t, w).Code)

	w = do(t, router, http.MethodPut, "/v1/callgraphs/demo", callgraph.Snapshot{Methods: []string{"garbage"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/v1/callgraphs/demo", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[ErrorResponse](t, rec).Code)
}

func TestDeleteGraph(t *testing.T) {
	router := setupRouter(t, nil)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/v1/callgraphs/demo", mutualRecursion()).Code)

	w := do(t, router, http.MethodDelete, "/v1/callgraphs/demo", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGraphsSurviveRegistryRestart(t *testing.T) {
	db, err := badger.Open(badger.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := badger.NewSnapshotStore(db, signature.NewIdentifierFactory(), nil)

	router := setupRouter(t, store)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPut, "/v1/callgraphs/demo", mutualRecursion()).Code)

	// A fresh registry over the same store loads the graph lazily.
	router = setupRouter(t, store)
	w := do(t, router, http.MethodGet, "/v1/callgraphs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"demo"}, decode[ListGraphsResponse](t, w).Graphs)

	w = do(t, router, http.MethodGet, "/v1/callgraphs/demo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[GraphSummary](t, w).Stats.Calls)
}

func TestRegistry_InvalidName(t *testing.T) {
	r := NewRegistry(nil, nil)
	err := r.Put(context.Background(), "a/b", callgraph.New())
	assert.ErrorIs(t, err, badger.ErrInvalidName)
}

func TestLattice(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodPost, "/v1/lattice/lca", LCARequest{A: "char", B: "short"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"int"}, decode[LCAResponse](t, w).Types)

	w = do(t, router, http.MethodPost, "/v1/lattice/ancestor", AncestorRequest{Ancestor: "int", Child: "byte"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[AncestorResponse](t, w).IsAncestor)

	w = do(t, router, http.MethodPost, "/v1/lattice/ancestor", AncestorRequest{Ancestor: "byte", Child: "int"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[AncestorResponse](t, w).IsAncestor)

	w = do(t, router, http.MethodPost, "/v1/lattice/lca", LCARequest{A: "int", B: "?!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TYPE", decode[ErrorResponse](t, w).Code)

	w = do(t, router, http.MethodPost, "/v1/lattice/lca", map[string]string{"a": "int"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/v1/lattice/lca", LCARequest{A: "int[]", B: "bottom"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[LCAResponse](t, w).Types)
}

func TestLattice_CachedInView(t *testing.T) {
	v := view.NewMemoryView(nil)
	router := NewRouter(NewHandlers(NewRegistry(nil, nil), WithView(v)), "test", 1<<20, nil)

	_, ok := view.GetModuleData(v, view.PrimitiveHierarchyKey)
	require.False(t, ok)

	w := do(t, router, http.MethodPost, "/v1/lattice/ancestor", AncestorRequest{Ancestor: "int", Child: "short"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[AncestorResponse](t, w).IsAncestor)

	_, ok = view.GetModuleData(v, view.PrimitiveHierarchyKey)
	assert.True(t, ok)
}
