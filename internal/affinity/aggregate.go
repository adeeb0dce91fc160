package affinity

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sclean/internal/table"
	"sclean/internal/util"
)

// ErrUnresolvedAffinity is returned when a summary row names an entity that has no observed cores
var ErrUnresolvedAffinity = errors.New("no affinity found for entity")

// default summary marker
const (
	DefaultMarkerColumn = "time"
	DefaultMarkerValue  = "Average:"
	ProcessColumn       = "process"
	CommandColumn       = "command"
)

// AggregateOptions selects the summary rows and labels errors
type AggregateOptions struct {
	MarkerColumn string // DefaultMarkerColumn when empty
	MarkerValue  string // DefaultMarkerValue when empty
	Source       string // path of the log, used in error messages
}

// AggregatedRecord is one summary row annotated with the cores its entity ran on
type AggregatedRecord struct {
	table.Record
	Key         EntityKey
	Process     string
	Cores       []string // ascending
	Cardinality int
}

// AggregateStats counts the rows seen by Aggregate
type AggregateStats struct {
	TrackStats
	Summary       int
	HeaderRepeats int
	Duplicates    int
}

// Aggregate splits the dataset into detail and summary rows, tracks affinity over the
// detail rows and attaches the resolved cores to each summary row. There is one output
// per entity, at the position of its first summary row; a thread row takes precedence
// over a process row with the same key. A summary row whose entity cannot be resolved
// fails with ErrUnresolvedAffinity.
func Aggregate(ds *table.Dataset, opts AggregateOptions) ([]AggregatedRecord, error) {
	records, _, err := AggregateWithStats(ds, opts)
	return records, err
}

// AggregateWithStats is Aggregate that also reports row counts
func AggregateWithStats(ds *table.Dataset, opts AggregateOptions) ([]AggregatedRecord, AggregateStats, error) {
	markerColumn := opts.MarkerColumn
	if markerColumn == "" {
		markerColumn = DefaultMarkerColumn
	}
	markerValue := opts.MarkerValue
	if markerValue == "" {
		markerValue = DefaultMarkerValue
	}
	var stats AggregateStats
	if !ds.HasColumn(markerColumn) {
		return nil, stats, fmt.Errorf("%s: column %s not found", opts.Source, markerColumn)
	}
	var detail, summary []table.Record
	for _, r := range ds.Records() {
		if r.Get(markerColumn) != markerValue {
			detail = append(detail, r)
			continue
		}
		if isHeaderRepeat(r, markerColumn) {
			stats.HeaderRepeats++
			continue
		}
		summary = append(summary, r)
	}
	stats.Summary = len(summary)

	set, trackStats := Track(detail)
	stats.TrackStats = trackStats

	seen := make(map[EntityKey]int)
	var out []AggregatedRecord
	for _, r := range summary {
		key, ok := KeyOf(r)
		if !ok {
			return nil, stats, fmt.Errorf("%s: tid %q tgid %q: %w", opts.Source, r.Get(TidColumn), r.Get(TgidColumn), ErrUnresolvedAffinity)
		}
		cores := set.Cores(key)
		if len(cores) == 0 {
			return nil, stats, fmt.Errorf("%s: entity %s: %w", opts.Source, key, ErrUnresolvedAffinity)
		}
		process := r.Get(ProcessColumn)
		if !r.Has(ProcessColumn) {
			process = r.Get(CommandColumn)
		}
		record := AggregatedRecord{
			Record:      r,
			Key:         key,
			Process:     process,
			Cores:       cores,
			Cardinality: len(cores),
		}
		if i, ok := seen[key]; ok {
			stats.Duplicates++
			// a process and its main thread share a key, the thread row is kept
			if !isThreadRow(out[i].Record) && isThreadRow(r) {
				out[i] = record
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, record)
	}
	slog.Debug("aggregated summary rows", slog.String("source", opts.Source), slog.Int("entities", len(out)), slog.Int("detail", stats.Rows), slog.Int("malformed", stats.Malformed))
	return out, stats, nil
}

func isThreadRow(r table.Record) bool {
	return !util.IsDigits(r.Get(TgidColumn))
}

// isHeaderRepeat reports whether a row repeats the column header, e.g.,
// "Average:  TGID  TID  %usr ...".
func isHeaderRepeat(r table.Record, markerColumn string) bool {
	for _, column := range r.Columns() {
		if column == markerColumn || column == ProcessColumn {
			continue
		}
		if strings.EqualFold(r.Get(column), column) {
			return true
		}
	}
	return false
}
