// Package report provides functions to generate reports in various formats such as txt, json, html, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sclean/internal/table"
)

const (
	FormatHtml = "html"
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
	FormatAll  = "all"
)

const NoDataFound = "No data found."

var FormatOptions = []string{FormatHtml, FormatXlsx, FormatJson, FormatTxt}

// Create generates a report in the specified format from the processed tables.
// The function ensures that all fields have the same number of values before generating the report.
//
// Parameters:
// - format: The desired format of the report (txt, json, html, xlsx).
// - allTableValues: The values for each field in each table.
// - title: The report title, usually the name of the log.
//
// Returns:
// - out: The generated report as a byte slice.
// - err: An error, if any occurred during report generation.
func Create(format string, allTableValues []table.TableValues, title string) (out []byte, err error) {
	// make sure that all fields have the same number of values
	for _, tableValue := range allTableValues {
		numRows := -1
		for _, fieldValues := range tableValue.Fields {
			if numRows == -1 {
				numRows = len(fieldValues.Values)
				continue
			}
			if len(fieldValues.Values) != numRows {
				return nil, fmt.Errorf("table %s: expected %d value(s) for field %s, found %d", tableValue.Name, numRows, fieldValues.Name, len(fieldValues.Values))
			}
		}
	}
	// create the report based on the specified format
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatHtml:
		return createHtmlReport(allTableValues, title)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	}
	return nil, fmt.Errorf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format)
}

// Formats expands the requested formats, replacing "all" with every supported format
func Formats(requested []string) ([]string, error) {
	var formats []string
	for _, format := range requested {
		if format == FormatAll {
			return FormatOptions, nil
		}
		found := false
		for _, option := range FormatOptions {
			if format == option {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("format options are: %s", strings.Join(append(FormatOptions, FormatAll), ", "))
		}
		formats = append(formats, format)
	}
	return formats, nil
}

func noData(tableValues table.TableValues) bool {
	return len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0
}

func noDataMessage(tableValues table.TableValues) string {
	if tableValues.NoDataFound != "" {
		return tableValues.NoDataFound
	}
	return NoDataFound
}
