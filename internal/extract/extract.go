// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package extract turns shaped log datasets into the processed tables that are
// exported and rendered into reports. There is one processor per log type.
package extract

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"sclean/internal/schema"
	"sclean/internal/table"
	"sclean/internal/util"

	mapset "github.com/deckarep/golang-set/v2"
)

// RecordFilter decides whether a record is kept
type RecordFilter interface {
	Match(r table.Record) (bool, error)
}

// Options carries the per-run choices shared by the processors. Each processor
// reads only the options that apply to its log type.
type Options struct {
	Source         string   // path of the log, used in messages
	Cores          []string // cores to report on
	Thread         string   // tid (pidstat) or pid (hogs) to follow
	Statuses       []string // status columns to chart, a leading % is added when missing
	Processes      []string // restrict per-process output to these commands
	Filter         RecordFilter
	VmstatSections []string
}

// Stats summarizes one processor run
type Stats struct {
	Entities  int // distinct processes, threads or cores reported
	Buckets   int // affinity buckets, pidstat-cpu only
	Malformed int // rows skipped during processing
}

// Result holds the processed tables of one log
type Result struct {
	LogType  string
	Tables   []table.TableValues
	Warnings []string
	Stats    Stats
}

// Processor processes one shaped log
type Processor func(ds *table.Dataset, opts Options) (Result, error)

var processors = map[string]Processor{
	schema.PidstatCPU: PidstatCPU,
	schema.PidstatMem: PidstatMem,
	schema.PidstatIO:  PidstatIO,
	schema.Mpstat:     Mpstat,
	schema.Vmstat:     Vmstat,
	schema.Procrank:   Procrank,
	schema.Free:       Free,
	schema.Tcmalloc:   Tcmalloc,
	schema.Hogs:       Hogs,
}

// Process runs the processor registered for logType
func Process(logType string, ds *table.Dataset, opts Options) (Result, error) {
	processor, ok := processors[logType]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", schema.ErrUnknownVariant, logType)
	}
	return processor(ds, opts)
}

// StatusColumns maps status names such as "usr" to column names such as "%usr" and
// checks that every column exists in ds.
func StatusColumns(ds *table.Dataset, statuses []string) ([]string, error) {
	var columns []string
	for _, status := range statuses {
		column := strings.ToLower(status)
		if !strings.HasPrefix(column, "%") {
			column = "%" + column
		}
		if !ds.HasColumn(column) {
			return nil, fmt.Errorf("unknown status %s, valid statuses: %s", status, strings.Join(percentColumns(ds), ", "))
		}
		columns = util.UniqueAppend(columns, column)
	}
	return columns, nil
}

func percentColumns(ds *table.Dataset) []string {
	var out []string
	for _, c := range ds.Columns {
		if strings.HasPrefix(c, "%") {
			out = append(out, strings.TrimPrefix(c, "%"))
		}
	}
	return out
}

// Groups returns the distinct values of column in first-seen order. When wanted is
// not empty it is returned instead, with a warning for each value that has no rows.
func Groups(ds *table.Dataset, column string, wanted []string) (groups []string, warnings []string) {
	values, err := ds.Column(column)
	if err != nil {
		return nil, nil
	}
	if len(wanted) == 0 {
		for _, v := range values {
			groups = util.UniqueAppend(groups, v)
		}
		return groups, nil
	}
	present := mapset.NewSet(values...)
	for _, w := range wanted {
		if !present.Contains(w) {
			warnings = append(warnings, fmt.Sprintf("%s %s not found", column, w))
		}
		groups = util.UniqueAppend(groups, w)
	}
	return groups, warnings
}

// SelectValues returns a copy of the rows whose column value is one of values
func SelectValues(ds *table.Dataset, column string, values []string) *table.Dataset {
	wanted := mapset.NewSet(values...)
	return ds.Filter(func(r table.Record) bool {
		return wanted.Contains(r.Get(column))
	})
}

// Detail returns a copy of the rows that are not summary rows
func Detail(ds *table.Dataset) *table.Dataset {
	m := schema.SummaryMarker
	return ds.Filter(func(r table.Record) bool {
		return r.Get(m.Column) != m.Value
	})
}

// Means computes, per distinct value of groupColumn, the mean of each value column
// rounded to two decimals. Groups are ordered with non-numeric names first and then
// numerically. Values that are not numbers are ignored.
func Means(ds *table.Dataset, groupColumn string, valueColumns []string) *table.Dataset {
	type acc struct {
		sums   []float64
		counts []int
	}
	groups := map[string]*acc{}
	var order []string
	for _, r := range ds.Records() {
		g := r.Get(groupColumn)
		a, ok := groups[g]
		if !ok {
			a = &acc{sums: make([]float64, len(valueColumns)), counts: make([]int, len(valueColumns))}
			groups[g] = a
			order = append(order, g)
		}
		for i, c := range valueColumns {
			v, err := strconv.ParseFloat(r.Get(c), 64)
			if err != nil {
				continue
			}
			a.sums[i] += v
			a.counts[i]++
		}
	}
	slices.SortStableFunc(order, compareGroupNames)
	out := table.NewDataset(append([]string{groupColumn}, valueColumns...))
	for _, g := range order {
		row := []string{g}
		a := groups[g]
		for i := range valueColumns {
			mean := 0.0
			if a.counts[i] > 0 {
				mean = a.sums[i] / float64(a.counts[i])
			}
			row = append(row, util.FormatFloat(math.Round(mean*100)/100))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func compareGroupNames(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return -1
	case berr != nil:
		return 1
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	}
	return 0
}

// matchCore reports whether a core value from a log selects the requested core.
// "0", "CPU0" and "cpu0" all select core 0; non-numeric names must match exactly.
func matchCore(value, requested string) bool {
	if strings.EqualFold(value, requested) {
		return true
	}
	digits := util.OnlyDigits(requested)
	return digits != "" && util.IsDigits(value) && value == digits
}

func newTable(name, fileName, menuLabel string, ds *table.Dataset, charts ...table.ChartDefinition) table.TableValues {
	return table.FromDataset(table.TableDefinition{
		Name:      name,
		FileName:  fileName,
		MenuLabel: menuLabel,
		HasRows:   true,
		Charts:    charts,
	}, ds)
}

// xField returns the time column when the dataset has one, otherwise the sample index is used
func xField(ds *table.Dataset) string {
	if ds.HasColumn(schema.IndexColumn) {
		return schema.IndexColumn
	}
	return ""
}
