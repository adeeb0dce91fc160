// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package table provides the table types shared by the log processors and the report renderers.
package table

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// Field represents the values for a field in a table
type Field struct {
	Name        string
	Description string // optional description of the field
	Values      []string
}

// TableValues combines the table definition with the resulting fields and their values
type TableValues struct {
	TableDefinition
	Fields []Field
}

type HTMLTableRenderer func(TableValues) string
type TextTableRenderer func(TableValues) string
type XlsxTableRenderer func(TableValues, *excelize.File, string, *int)

// chart types
const (
	ChartLine = "line"
	ChartBar  = "bar"
	ChartPie  = "pie" // one chart per row, YFields are the slices
)

// ChartDefinition describes how the html renderer draws a table as chart(s).
type ChartDefinition struct {
	Type         string // ChartLine when empty
	Title        string
	XaxisText    string
	YaxisText    string
	XField       string   // field holding the x-axis labels (slice chart titles for pie), sample index when empty or absent
	YFields      []string // one dataset per field
	GroupBy      string   // one chart per distinct value of this field, single chart when empty
	Groups       []string // restrict GroupBy to these values, in this order
	SuggestedMin string
	SuggestedMax string
}

// Section names a run of consecutive rows, e.g., the threads of one affinity bucket
type Section struct {
	Name string
	Rows int
}

// TableDefinition defines the structure of a table in the report
type TableDefinition struct {
	Name        string
	FileName    string // name of the csv export, no export when empty
	MenuLabel   string // add to tables that will be displayed in the menu
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
	Charts      []ChartDefinition
	Sections    []Section // in row order, rows after the last section belong to none
}

// NewTableValues builds the table values for a definition and validates them.
// Tables that fail validation are logged and returned without fields.
func NewTableValues(definition TableDefinition, fields []Field) TableValues {
	tableValues := TableValues{
		TableDefinition: definition,
		Fields:          fields,
	}
	if err := validateTableValues(tableValues); err != nil {
		slog.Error("table validation failed", slog.String("table", definition.Name), slog.String("error", err.Error()))
		return TableValues{
			TableDefinition: definition,
			Fields:          []Field{},
		}
	}
	return tableValues
}

// FromDataset converts a row-oriented dataset into column-oriented table values.
func FromDataset(definition TableDefinition, ds *Dataset) TableValues {
	if ds == nil {
		return NewTableValues(definition, []Field{})
	}
	return NewTableValues(definition, ds.Fields())
}

// GetFieldIndex returns the index of a field with the given name in the TableValues structure.
// Returns:
//   - int: The index of the field if found and valid, -1 otherwise
//   - error: nil if successful, an error describing the issue otherwise
func GetFieldIndex(fieldName string, tableValues TableValues) (int, error) {
	for i, field := range tableValues.Fields {
		if field.Name == fieldName {
			if len(field.Values) == 0 {
				return -1, fmt.Errorf("field [%s] does not have associated value(s)", field.Name)
			}
			return i, nil
		}
	}
	return -1, fmt.Errorf("field [%s] not found in table [%s]", fieldName, tableValues.Name)
}

// NumRows returns the number of values in the first field
func (tv TableValues) NumRows() int {
	if len(tv.Fields) == 0 {
		return 0
	}
	return len(tv.Fields[0].Values)
}

// SectionValues splits the rows into one TableValues per section. Each part is
// named after its section and carries no charts or sections of its own.
func (tv TableValues) SectionValues() []TableValues {
	var parts []TableValues
	start := 0
	for _, section := range tv.Sections {
		part := TableValues{
			TableDefinition: TableDefinition{Name: section.Name, HasRows: tv.HasRows},
		}
		for _, field := range tv.Fields {
			part.Fields = append(part.Fields, Field{
				Name:        field.Name,
				Description: field.Description,
				Values:      field.Values[start : start+section.Rows],
			})
		}
		parts = append(parts, part)
		start += section.Rows
	}
	return parts
}

func validateTableValues(tableValues TableValues) error {
	if tableValues.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	// no field values is a valid state
	if len(tableValues.Fields) == 0 {
		return nil
	}
	// field names cannot be empty
	for i, field := range tableValues.Fields {
		if field.Name == "" {
			return fmt.Errorf("table %s, field %d, name cannot be empty", tableValues.Name, i)
		}
	}
	// the number of entries in each field must be the same
	numEntries := len(tableValues.Fields[0].Values)
	for i, field := range tableValues.Fields {
		if len(field.Values) != numEntries {
			return fmt.Errorf("table %s, field %d, %s, number of entries must be the same for all fields, expected %d, got %d", tableValues.Name, i, field.Name, numEntries, len(field.Values))
		}
	}
	sectionRows := 0
	for _, section := range tableValues.Sections {
		if section.Rows < 0 {
			return fmt.Errorf("table %s, section %s, negative row count", tableValues.Name, section.Name)
		}
		sectionRows += section.Rows
	}
	if sectionRows > numEntries {
		return fmt.Errorf("table %s, sections cover %d rows, table has %d", tableValues.Name, sectionRows, numEntries)
	}
	return nil
}
