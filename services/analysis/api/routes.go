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
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RegisterRoutes registers the /v1 endpoints on rg.
//
// Endpoints:
//
//	GET    /v1/health
//	GET    /v1/callgraphs                     - List graph names
//	PUT    /v1/callgraphs/:name               - Register a graph from a snapshot
//	GET    /v1/callgraphs/:name               - Graph summary and stats
//	DELETE /v1/callgraphs/:name               - Remove a graph
//	GET    /v1/callgraphs/:name/snapshot      - Snapshot JSON
//	GET    /v1/callgraphs/:name/dot           - DOT export
//	GET    /v1/callgraphs/:name/dump          - Text dump
//	GET    /v1/callgraphs/:name/calls         - Callees or callers of a method
//	GET    /v1/callgraphs/:name/contains      - Edge membership
//	POST   /v1/lattice/lca                    - Least common ancestors
//	POST   /v1/lattice/ancestor               - Ancestor test
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/health", h.HandleHealth)

	graphs := rg.Group("/callgraphs")
	{
		graphs.GET("", h.HandleListGraphs)
		graphs.PUT("/:name", h.HandlePutGraph)
		graphs.GET("/:name", h.HandleGetGraph)
		graphs.DELETE("/:name", h.HandleDeleteGraph)
		graphs.GET("/:name/snapshot", h.HandleSnapshot)
		graphs.GET("/:name/dot", h.HandleDOT)
		graphs.GET("/:name/dump", h.HandleDump)
		graphs.GET("/:name/calls", h.HandleCalls)
		graphs.GET("/:name/contains", h.HandleContainsCall)
	}

	lattice := rg.Group("/lattice")
	{
		lattice.POST("/lca", h.HandleLCA)
		lattice.POST("/ancestor", h.HandleAncestor)
	}
}

// NewRouter builds the engine with tracing, recovery, a body size limit and,
// when metrics is non-nil, a /metrics endpoint.
func NewRouter(h *Handlers, serviceName string, maxBodyBytes int64, metrics http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	if maxBodyBytes > 0 {
		router.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
			c.Next()
		})
	}
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	RegisterRoutes(router.Group("/v1"), h)
	return router
}
