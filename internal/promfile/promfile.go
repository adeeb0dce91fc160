// Package promfile records per-run processing counts as prometheus gauges and writes them
// in the node_exporter textfile format.
package promfile

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"sclean/internal/extract"
	"sclean/internal/schema"
)

const namespace = "sclean"

// Collector holds the gauges of one run, registered on a private registry
type Collector struct {
	registry *prometheus.Registry
	rows     *prometheus.GaugeVec
	kept     *prometheus.GaugeVec
	dropped  *prometheus.GaugeVec
	entities *prometheus.GaugeVec
	buckets  *prometheus.GaugeVec
	warnings *prometheus.GaugeVec
	lastRun  prometheus.Gauge
}

// New creates a collector with all gauges registered
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_read",
			Help:      "Data rows read from the log, header rows excluded.",
		}, []string{"log_type"}),
		kept: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_kept",
			Help:      "Data rows kept after shaping.",
		}, []string{"log_type"}),
		dropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_dropped",
			Help:      "Data rows dropped while shaping, by reason.",
		}, []string{"log_type", "reason"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Distinct processes, threads or cores reported.",
		}, []string{"log_type"}),
		buckets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "affinity_buckets",
			Help:      "Core affinity buckets produced.",
		}, []string{"log_type"}),
		warnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warnings",
			Help:      "Warnings reported while processing.",
		}, []string{"log_type"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Time of the last processing run.",
		}),
	}
	c.registry.MustRegister(c.rows, c.kept, c.dropped, c.entities, c.buckets, c.warnings, c.lastRun)
	return c
}

// Observe records the counts of one processed log
func (c *Collector) Observe(logType string, shape schema.Stats, result extract.Result) {
	c.rows.WithLabelValues(logType).Set(float64(shape.Rows))
	c.kept.WithLabelValues(logType).Set(float64(shape.Kept))
	c.dropped.WithLabelValues(logType, "incomplete").Set(float64(shape.Incomplete))
	c.dropped.WithLabelValues(logType, "header").Set(float64(shape.HeaderRepeats))
	c.dropped.WithLabelValues(logType, "marker").Set(float64(shape.Markers))
	c.dropped.WithLabelValues(logType, "malformed").Set(float64(shape.Malformed + result.Stats.Malformed))
	c.entities.WithLabelValues(logType).Set(float64(result.Stats.Entities))
	if result.Stats.Buckets > 0 {
		c.buckets.WithLabelValues(logType).Set(float64(result.Stats.Buckets))
	}
	c.warnings.WithLabelValues(logType).Set(float64(len(result.Warnings)))
	c.lastRun.SetToCurrentTime()
}

// WriteTextfile writes the gauges to path, atomically
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	slog.Debug("wrote metrics", slog.String("path", path))
	return nil
}
