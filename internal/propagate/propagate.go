// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package propagate carries context values forward across the records of a dataset.
package propagate

import (
	"fmt"
	"slices"
	"strings"

	"sclean/internal/table"
	"sclean/internal/util"
)

// column names added by the propagators
const (
	TimeColumn    = "time"
	ProcessColumn = "process"
)

// row kinds assigned by the first pass of Process
const (
	KindProcess = "process"
	KindThread  = "thread"
)

// IsTimestamp reports whether a value looks like a clock time, e.g., 10:00:01.
// A trailing colon marks a label such as "Average:" rather than a time.
func IsTimestamp(value string) bool {
	return strings.Contains(value, ":") && !strings.HasSuffix(value, ":")
}

// Time adds a time column holding, for every record, the most recent
// timestamp-shaped value of column at or before that record. Records before
// the first timestamp get an empty value. When column holds no timestamp the
// dataset is left untouched and false is returned.
func Time(ds *table.Dataset, column string) (bool, error) {
	if ds.HasColumn(TimeColumn) {
		return false, fmt.Errorf("column %s already exists", TimeColumn)
	}
	values, err := ds.Column(column)
	if err != nil {
		return false, err
	}
	if !slices.ContainsFunc(values, IsTimestamp) {
		return false, nil
	}
	current := ""
	times := make([]string, len(values))
	for i, v := range values {
		if IsTimestamp(v) {
			current = v
		}
		times[i] = current
	}
	if err := ds.AddColumn(TimeColumn, times); err != nil {
		return false, err
	}
	return true, nil
}

// Kinds classifies every record as a process row (numeric tgid) or a thread row.
func Kinds(ds *table.Dataset, tgidColumn string) ([]string, error) {
	tgids, err := ds.Column(tgidColumn)
	if err != nil {
		return nil, err
	}
	kinds := make([]string, len(tgids))
	for i, tgid := range tgids {
		if util.IsDigits(tgid) {
			kinds[i] = KindProcess
		} else {
			kinds[i] = KindThread
		}
	}
	return kinds, nil
}

// Process adds a process column holding the command of the most recent process
// row at or before each record. Thread rows inherit the name of the process
// that precedes them. Records before the first process row get an empty value.
func Process(ds *table.Dataset, tgidColumn, commandColumn string) error {
	if ds.HasColumn(ProcessColumn) {
		return fmt.Errorf("column %s already exists", ProcessColumn)
	}
	kinds, err := Kinds(ds, tgidColumn)
	if err != nil {
		return err
	}
	commands, err := ds.Column(commandColumn)
	if err != nil {
		return err
	}
	current := ""
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		if kind == KindProcess {
			current = commands[i]
		}
		names[i] = current
	}
	return ds.AddColumn(ProcessColumn, names)
}
