package schema

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"sclean/internal/propagate"
	"sclean/internal/table"
	"sclean/internal/util"
)

// Stats counts what happened to the data rows while shaping a log
type Stats struct {
	Rows          int // data rows offered, header rows excluded
	Kept          int
	Incomplete    int // fewer tokens than columns
	HeaderRepeats int
	Markers       int // matched a drop marker
	Malformed     int // failed a digit, numeric or conversion check
}

// Dropped returns the number of rows that did not make it into the dataset
func (s Stats) Dropped() int {
	return s.Rows - s.Kept
}

// Shape builds the dataset for a log of this variant from normalized rows. Column
// names are lower-cased. Rows with extra tokens have them joined into the last column.
// Incomplete rows are dropped after time propagation so that timestamp-only lines can
// supply the time context of the rows that follow them. Marker rows are dropped even
// when incomplete, e.g., the procrank totals trailer.
func (v Variant) Shape(rows [][]string) (*table.Dataset, Stats, error) {
	var stats Stats
	columns, data, err := v.columns(rows)
	if err != nil {
		return nil, stats, err
	}
	for _, name := range v.Required {
		if !slices.Contains(columns, name) {
			return nil, stats, fmt.Errorf("%s: %w: missing column %s", v.ID, ErrSchemaMismatch, name)
		}
	}
	stats.Rows = len(data)

	ds := table.NewDataset(columns)
	complete := make([]bool, 0, len(data))
	for _, row := range data {
		shaped, ok := fit(row, len(columns))
		ds.Rows = append(ds.Rows, shaped)
		complete = append(complete, ok)
	}

	if v.TimeColumn != "" {
		if _, err := propagate.Time(ds, v.TimeColumn); err != nil {
			return nil, stats, fmt.Errorf("%s: %w", v.ID, err)
		}
	}

	out := table.NewDataset(ds.Columns)
	for i, row := range ds.Rows {
		r := ds.Record(i)
		if v.matchesMarker(r) {
			stats.Markers++
			continue
		}
		if !complete[i] {
			stats.Incomplete++
			continue
		}
		if isHeaderRepeat(r, columns) {
			stats.HeaderRepeats++
			continue
		}
		converted, err := v.convert(out.Columns, row)
		if err != nil {
			stats.Malformed++
			slog.Debug("dropping malformed row", slog.String("log", v.ID), slog.String("row", strings.Join(row, " ")), slog.String("error", err.Error()))
			continue
		}
		out.Rows = append(out.Rows, converted)
	}
	for _, name := range v.Discard {
		out.DropColumn(name)
	}
	stats.Kept = out.Len()
	slog.Debug("shaped log", slog.String("log", v.ID), slog.Int("rows", stats.Rows), slog.Int("kept", stats.Kept), slog.Int("incomplete", stats.Incomplete), slog.Int("malformed", stats.Malformed))
	return out, stats, nil
}

func (v Variant) columns(rows [][]string) (columns []string, data [][]string, err error) {
	switch v.Header {
	case HeaderPositional:
		return slices.Clone(v.Columns), rows, nil
	case HeaderSecondRow:
		if len(rows) < 2 {
			return nil, nil, fmt.Errorf("%s: %w", v.ID, ErrNoHeader)
		}
		return lower(rows[1]), rows[2:], nil
	default:
		if len(rows) < 1 {
			return nil, nil, fmt.Errorf("%s: %w", v.ID, ErrNoHeader)
		}
		header := rows[0]
		if header[0] == "#" {
			header = header[1:]
		}
		if len(header) == 0 {
			return nil, nil, fmt.Errorf("%s: %w", v.ID, ErrNoHeader)
		}
		columns = lower(header)
		columns[0] = IndexColumn
		return columns, rows[1:], nil
	}
}

// fit returns a row with exactly n values. Extra tokens are joined into the last
// value; missing values are empty and ok is false.
func fit(row []string, n int) (shaped []string, ok bool) {
	shaped = make([]string, n)
	if len(row) > n && n > 0 {
		copy(shaped, row[:n-1])
		shaped[n-1] = strings.Join(row[n-1:], " ")
		return shaped, true
	}
	copy(shaped, row)
	return shaped, len(row) == n
}

func isHeaderRepeat(r table.Record, columns []string) bool {
	for _, column := range columns {
		if column == IndexColumn {
			continue
		}
		if strings.EqualFold(r.Get(column), column) {
			return true
		}
	}
	return false
}

func (v Variant) matchesMarker(r table.Record) bool {
	for _, m := range v.DropMarkers {
		if r.Has(m.Column) && r.Get(m.Column) == m.Value {
			return true
		}
	}
	return false
}

// convert applies the digit and numeric checks and the unit conversions to a copy of row
func (v Variant) convert(columns []string, row []string) ([]string, error) {
	out := slices.Clone(row)
	index := func(name string) int { return slices.Index(columns, name) }
	for _, name := range v.Digits {
		if i := index(name); i != -1 && !util.IsDigits(out[i]) {
			return nil, fmt.Errorf("%s is not an integer: %q", name, out[i])
		}
	}
	for _, c := range v.Conversions {
		i := index(c.Column)
		if i == -1 {
			continue
		}
		value, err := Convert(out[i], c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Column, err)
		}
		out[i] = value
	}
	for _, name := range v.Numeric {
		i := index(name)
		if i == -1 {
			continue
		}
		if _, err := strconv.ParseFloat(out[i], 64); err != nil {
			return nil, fmt.Errorf("%s is not a number: %q", name, out[i])
		}
	}
	return out, nil
}

// Convert applies one conversion to a value
func Convert(value string, c Conversion) (string, error) {
	trimmed := value
	if c.Trim != "" {
		trimmed = strings.TrimRight(value, c.Trim)
	}
	f, err := util.ParseFloat(trimmed)
	if err != nil {
		return "", err
	}
	if c.Divisor != 0 {
		f /= c.Divisor
	}
	return util.FormatFloat(f), nil
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
