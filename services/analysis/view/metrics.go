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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for view operations.
var (
	tracer = otel.Tracer("sootup.view")
	meter  = otel.Meter("sootup.view")
)

// Metrics for module data operations.
var (
	moduleDataHits         metric.Int64Counter
	moduleDataMisses       metric.Int64Counter
	moduleDataComputations metric.Int64Counter
	moduleDataLookup       metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		moduleDataHits, err = meter.Int64Counter(
			"view_module_data_hits_total",
			metric.WithDescription("Total number of module data cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		moduleDataMisses, err = meter.Int64Counter(
			"view_module_data_misses_total",
			metric.WithDescription("Total number of module data cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		moduleDataComputations, err = meter.Int64Counter(
			"view_module_data_computations_total",
			metric.WithDescription("Total number of module data supplier runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		moduleDataLookup, err = meter.Float64Histogram(
			"view_module_data_lookup_duration_seconds",
			metric.WithDescription("Duration of module data lookups"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordModuleDataLookup records a hit or miss and the lookup latency.
func recordModuleDataLookup(ctx context.Context, key string, hit bool, d time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("key", key))
	if hit {
		moduleDataHits.Add(ctx, 1, attrs)
	} else {
		moduleDataMisses.Add(ctx, 1, attrs)
	}
	moduleDataLookup.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("key", key), attribute.Bool("hit", hit)),
	)
}

// recordModuleDataComputation records a supplier run.
func recordModuleDataComputation(ctx context.Context, key string) {
	if err := initMetrics(); err != nil {
		return
	}
	moduleDataComputations.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
}

// startModuleDataSpan creates a span for a module data operation.
func startModuleDataSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ModuleData."+operation,
		trace.WithAttributes(
			attribute.String("module_data.operation", operation),
			attribute.String("module_data.key", key),
		),
	)
}
