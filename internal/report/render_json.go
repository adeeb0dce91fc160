package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"sclean/internal/table"
)

// jsonRecords returns one name/value object per row. Tables without rows yield an
// empty list.
func jsonRecords(tableValues table.TableValues) []map[string]string {
	records := make([]map[string]string, 0, tableValues.NumRows())
	for row := range tableValues.NumRows() {
		record := make(map[string]string, len(tableValues.Fields))
		for _, field := range tableValues.Fields {
			record[field.Name] = field.Values[row]
		}
		records = append(records, record)
	}
	return records
}

// createJsonReport maps each table name to its records
func createJsonReport(allTableValues []table.TableValues) ([]byte, error) {
	doc := make(map[string][]map[string]string, len(allTableValues))
	for _, tableValues := range allTableValues {
		doc[tableValues.Name] = jsonRecords(tableValues)
	}
	return json.MarshalIndent(doc, "", " ")
}
