// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package table

import (
	"fmt"
	"slices"
)

// Dataset is a row-oriented table. Every row has exactly one value per column.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Record is one row of a Dataset, addressed by column name.
type Record struct {
	columns []string
	values  []string
}

// NewDataset creates an empty dataset with the given column names
func NewDataset(columns []string) *Dataset {
	return &Dataset{Columns: slices.Clone(columns)}
}

// NewRecord creates a standalone record. Missing trailing values are empty.
func NewRecord(columns []string, values []string) Record {
	vals := make([]string, len(columns))
	copy(vals, values)
	return Record{columns: columns, values: vals}
}

// ColumnIndex returns the index of the named column, or -1
func (d *Dataset) ColumnIndex(name string) int {
	return slices.Index(d.Columns, name)
}

// HasColumn reports whether the dataset has the named column
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) != -1
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Append adds a row. The row must have one value per column.
func (d *Dataset) Append(values []string) error {
	if len(values) != len(d.Columns) {
		return fmt.Errorf("expected %d values, got %d", len(d.Columns), len(values))
	}
	d.Rows = append(d.Rows, values)
	return nil
}

// Value returns the value of a column in a row, or "" if the column doesn't exist
func (d *Dataset) Value(row int, column string) string {
	idx := d.ColumnIndex(column)
	if idx == -1 {
		return ""
	}
	return d.Rows[row][idx]
}

// Set replaces the value of a column in a row
func (d *Dataset) Set(row int, column string, value string) error {
	idx := d.ColumnIndex(column)
	if idx == -1 {
		return fmt.Errorf("column %s not found", column)
	}
	d.Rows[row][idx] = value
	return nil
}

// Column returns a copy of all values of a column
func (d *Dataset) Column(column string) ([]string, error) {
	idx := d.ColumnIndex(column)
	if idx == -1 {
		return nil, fmt.Errorf("column %s not found", column)
	}
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		values = append(values, row[idx])
	}
	return values, nil
}

// AddColumn appends a column. values must have one entry per row.
func (d *Dataset) AddColumn(name string, values []string) error {
	if d.HasColumn(name) {
		return fmt.Errorf("column %s already exists", name)
	}
	if len(values) != len(d.Rows) {
		return fmt.Errorf("column %s: expected %d values, got %d", name, len(d.Rows), len(values))
	}
	d.Columns = append(slices.Clip(d.Columns), name)
	for i := range d.Rows {
		d.Rows[i] = append(slices.Clip(d.Rows[i]), values[i])
	}
	return nil
}

// DropColumn removes a column if it exists
func (d *Dataset) DropColumn(name string) {
	idx := d.ColumnIndex(name)
	if idx == -1 {
		return
	}
	d.Columns = slices.Delete(slices.Clone(d.Columns), idx, idx+1)
	for i := range d.Rows {
		d.Rows[i] = slices.Delete(slices.Clone(d.Rows[i]), idx, idx+1)
	}
}

// Record returns the i-th row as a Record
func (d *Dataset) Record(i int) Record {
	return Record{columns: d.Columns, values: d.Rows[i]}
}

// Records returns all rows as Records, in row order
func (d *Dataset) Records() []Record {
	records := make([]Record, 0, len(d.Rows))
	for i := range d.Rows {
		records = append(records, d.Record(i))
	}
	return records
}

// Filter returns a new dataset holding copies of the rows for which keep returns true
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := NewDataset(d.Columns)
	for i := range d.Rows {
		if keep(d.Record(i)) {
			out.Rows = append(out.Rows, slices.Clone(d.Rows[i]))
		}
	}
	return out
}

// Fields converts the dataset into column-oriented fields
func (d *Dataset) Fields() []Field {
	fields := make([]Field, len(d.Columns))
	for i, column := range d.Columns {
		fields[i].Name = column
		fields[i].Values = make([]string, 0, len(d.Rows))
	}
	for _, row := range d.Rows {
		for i := range fields {
			fields[i].Values = append(fields[i].Values, row[i])
		}
	}
	return fields
}

// Get returns the value of the named column, or "" if the column doesn't exist
func (r Record) Get(column string) string {
	idx := slices.Index(r.columns, column)
	if idx == -1 || idx >= len(r.values) {
		return ""
	}
	return r.values[idx]
}

// Has reports whether the record has the named column
func (r Record) Has(column string) bool {
	return slices.Contains(r.columns, column)
}

// Columns returns the column names of the record
func (r Record) Columns() []string {
	return r.columns
}

// Values returns a copy of the record's values in column order
func (r Record) Values() []string {
	return slices.Clone(r.values)
}
