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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	snapshotOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sootup_snapshot_store_operations_total",
		Help: "Total snapshot store operations by operation and outcome",
	}, []string{"operation", "outcome"})

	snapshotOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sootup_snapshot_store_duration_seconds",
		Help:    "Snapshot store operation latency",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	}, []string{"operation"})

	snapshotBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sootup_snapshot_store_record_bytes",
		Help:    "Encoded size of stored snapshot records",
		Buckets: prometheus.ExponentialBuckets(256, 4, 10),
	})
)

var tracer = otel.Tracer("sootup.storage.badger")

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
