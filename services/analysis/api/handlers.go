// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api serves call graphs and the primitive type lattice over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ceclin/SootUp/services/analysis/callgraph"
	"github.com/ceclin/SootUp/services/analysis/signature"
	"github.com/ceclin/SootUp/services/analysis/storage/badger"
	"github.com/ceclin/SootUp/services/analysis/typelattice"
	"github.com/ceclin/SootUp/services/analysis/view"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

// Handlers holds the HTTP handlers.
type Handlers struct {
	registry  *Registry
	factory   *signature.IdentifierFactory
	view      view.View
	graphOpts []callgraph.Option
	logger    *slog.Logger
}

// HandlersOption configures Handlers.
type HandlersOption func(*Handlers)

// WithGraphOptions sets the options applied to every uploaded graph.
func WithGraphOptions(opts ...callgraph.Option) HandlersOption {
	return func(h *Handlers) {
		h.graphOpts = opts
	}
}

// WithView sets the view whose module data holds the type lattice.
func WithView(v view.View) HandlersOption {
	return func(h *Handlers) {
		if v != nil {
			h.view = v
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) HandlersOption {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandlers creates handlers over registry.
func NewHandlers(registry *Registry, opts ...HandlersOption) *Handlers {
	h := &Handlers{
		registry:  registry,
		factory:   signature.NewIdentifierFactory(),
		view:      view.NewMemoryView(nil),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return h.logger.With("request_id", requestID, "handler", handler)
}

func abort(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// graphError maps lookup and mutation errors to a status and code.
func graphError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrGraphNotFound):
		return http.StatusNotFound, "GRAPH_NOT_FOUND"
	case errors.Is(err, callgraph.ErrMethodNotFound):
		return http.StatusNotFound, "METHOD_NOT_FOUND"
	case errors.Is(err, badger.ErrInvalidName):
		return http.StatusBadRequest, "INVALID_NAME"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (h *Handlers) graph(c *gin.Context, logger *slog.Logger) (*callgraph.Graph, bool) {
	g, err := h.registry.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		status, code := graphError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("graph lookup failed", "error", err)
		}
		abort(c, status, code, err)
		return nil, false
	}
	return g, true
}

func (h *Handlers) lattice(c *gin.Context) typelattice.Hierarchy {
	return view.PrimitiveHierarchyOf(c.Request.Context(), h.view)
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: ServiceVersion})
}

// HandlePutGraph handles PUT /v1/callgraphs/:name.
//
// Description:
//
//	Builds a call graph from a snapshot body and registers it under name,
//	replacing any previous graph. Unparsable signatures and calls whose
//	endpoints are not listed among the snapshot's methods are rejected
//	with 400 INVALID_SNAPSHOT.
func (h *Handlers) HandlePutGraph(c *gin.Context) {
	logger := h.requestLogger(c, "HandlePutGraph")
	name := c.Param("name")

	var snap callgraph.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		logger.Warn("invalid request body", "error", err)
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	g, err := callgraph.FromSnapshot(snap, h.factory, h.graphOpts...)
	if err != nil {
		logger.Warn("snapshot rejected", "name", name, "error", err)
		abort(c, http.StatusBadRequest, "INVALID_SNAPSHOT", err)
		return
	}

	if err := h.registry.Put(c.Request.Context(), name, g); err != nil {
		status, code := graphError(err)
		logger.Error("register graph failed", "name", name, "error", err)
		abort(c, status, code, err)
		return
	}

	stats := g.Stats()
	logger.Info("call graph registered", "name", name, "methods", stats.Methods, "calls", stats.Calls)
	c.JSON(http.StatusOK, GraphSummary{Name: name, Fingerprint: g.Fingerprint(), Stats: stats})
}

// HandleListGraphs handles GET /v1/callgraphs.
func (h *Handlers) HandleListGraphs(c *gin.Context) {
	logger := h.requestLogger(c, "HandleListGraphs")

	names, err := h.registry.Names(c.Request.Context())
	if err != nil {
		logger.Error("list graphs failed", "error", err)
		abort(c, http.StatusInternalServerError, "INTERNAL", err)
		return
	}
	c.JSON(http.StatusOK, ListGraphsResponse{Graphs: names})
}

// HandleGetGraph handles GET /v1/callgraphs/:name.
func (h *Handlers) HandleGetGraph(c *gin.Context) {
	logger := h.requestLogger(c, "HandleGetGraph")
	g, ok := h.graph(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, GraphSummary{Name: c.Param("name"), Fingerprint: g.Fingerprint(), Stats: g.Stats()})
}

// HandleDeleteGraph handles DELETE /v1/callgraphs/:name.
func (h *Handlers) HandleDeleteGraph(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDeleteGraph")
	name := c.Param("name")

	if err := h.registry.Delete(c.Request.Context(), name); err != nil {
		status, code := graphError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("delete graph failed", "name", name, "error", err)
		}
		abort(c, status, code, err)
		return
	}
	logger.Info("call graph deleted", "name", name)
	c.Status(http.StatusNoContent)
}

// HandleSnapshot handles GET /v1/callgraphs/:name/snapshot.
func (h *Handlers) HandleSnapshot(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSnapshot")
	g, ok := h.graph(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}

// HandleDOT handles GET /v1/callgraphs/:name/dot.
func (h *Handlers) HandleDOT(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDOT")
	g, ok := h.graph(c, logger)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", []byte(g.ExportAsDOT()))
}

// HandleDump handles GET /v1/callgraphs/:name/dump.
func (h *Handlers) HandleDump(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDump")
	g, ok := h.graph(c, logger)
	if !ok {
		return
	}
	c.String(http.StatusOK, "%s", g.String())
}

// HandleCalls handles GET /v1/callgraphs/:name/calls.
//
// Query Parameters:
//
//	method - Method signature, e.g. "<app.Main: void main(java.lang.String[])>".
//	direction - "out" for callees (default) or "in" for callers.
func (h *Handlers) HandleCalls(c *gin.Context) {
	logger := h.requestLogger(c, "HandleCalls")

	m, err := h.factory.ParseMethodSignature(c.Query("method"))
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_SIGNATURE", err)
		return
	}
	direction := c.DefaultQuery("direction", "out")
	if direction != "out" && direction != "in" {
		abort(c, http.StatusBadRequest, "INVALID_DIRECTION", errors.New(`direction must be "in" or "out"`))
		return
	}

	g, ok := h.graph(c, logger)
	if !ok {
		return
	}

	var result []signature.MethodSignature
	if direction == "out" {
		result, err = g.CallsFrom(m)
	} else {
		result, err = g.CallsTo(m)
	}
	if err != nil {
		status, code := graphError(err)
		abort(c, status, code, err)
		return
	}

	methods := make([]string, len(result))
	for i, r := range result {
		methods[i] = r.String()
	}
	c.JSON(http.StatusOK, CallsResponse{Method: m.String(), Direction: direction, Methods: methods})
}

// HandleContainsCall handles GET /v1/callgraphs/:name/contains?from=&to=.
func (h *Handlers) HandleContainsCall(c *gin.Context) {
	logger := h.requestLogger(c, "HandleContainsCall")

	from, err := h.factory.ParseMethodSignature(c.Query("from"))
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_SIGNATURE", err)
		return
	}
	to, err := h.factory.ParseMethodSignature(c.Query("to"))
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_SIGNATURE", err)
		return
	}

	g, ok := h.graph(c, logger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ContainsCallResponse{
		From:     from.String(),
		To:       to.String(),
		Contains: g.ContainsCall(from, to),
	})
}

// HandleLCA handles POST /v1/lattice/lca.
func (h *Handlers) HandleLCA(c *gin.Context) {
	logger := h.requestLogger(c, "HandleLCA")

	var req LCARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	a, b, ok := parseTypes(c, req.A, req.B)
	if !ok {
		return
	}

	lca := h.lattice(c).LeastCommonAncestor(a, b)
	types := make([]string, len(lca))
	for i, t := range lca {
		types[i] = t.String()
	}
	c.JSON(http.StatusOK, LCAResponse{Types: types})
}

// HandleAncestor handles POST /v1/lattice/ancestor.
func (h *Handlers) HandleAncestor(c *gin.Context) {
	logger := h.requestLogger(c, "HandleAncestor")

	var req AncestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	ancestor, child, ok := parseTypes(c, req.Ancestor, req.Child)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, AncestorResponse{IsAncestor: h.lattice(c).IsAncestor(ancestor, child)})
}

func parseTypes(c *gin.Context, x, y string) (typelattice.Type, typelattice.Type, bool) {
	a, err := typelattice.ParseType(x)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_TYPE", err)
		return nil, nil, false
	}
	b, err := typelattice.ParseType(y)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_TYPE", err)
		return nil, nil, false
	}
	return a, b, true
}
