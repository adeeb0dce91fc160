package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sclean/internal/table"
)

var customTextRenderers = map[string]table.TextTableRenderer{}

// RegisterTextRenderer replaces the default text rendering of the named table
func RegisterTextRenderer(tableName string, renderer table.TextTableRenderer) {
	customTextRenderers[tableName] = renderer
}

const textColumnGap = 3

// TextHeading returns the text followed by an underline of the same length
func TextHeading(text string, underline rune) string {
	return text + "\n" + strings.Repeat(string(underline), len(text)) + "\n"
}

func createTextReport(allTableValues []table.TableValues) (out []byte, err error) {
	p := message.NewPrinter(language.English) // 12,345 rows
	var sb strings.Builder
	for _, tableValues := range allTableValues {
		sb.WriteString(TextHeading(tableValues.Name, '='))
		switch renderer := customTextRenderers[tableValues.Name]; {
		case noData(tableValues):
			sb.WriteString(noDataMessage(tableValues) + "\n")
		case renderer != nil:
			sb.WriteString(renderer(tableValues))
		default:
			sb.WriteString(DefaultTextTableRendererFunc(tableValues))
		}
		if tableValues.HasRows && !noData(tableValues) {
			sb.WriteString(p.Sprintf("(%d rows)\n", tableValues.NumRows()))
		}
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

// columnWidths returns the width of each column, the larger of the field name and
// its longest value. The last column is not padded.
func columnWidths(fields []table.Field) []int {
	widths := make([]int, len(fields))
	for i, field := range fields[:len(fields)-1] {
		widths[i] = len(field.Name)
		for _, value := range field.Values {
			widths[i] = max(widths[i], len(value))
		}
	}
	return widths
}

func writeTextRow(sb *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		sb.WriteString(fmt.Sprintf("%-*s", widths[i]+textColumnGap, cell))
	}
	sb.WriteString("\n")
}

// DefaultTextTableRendererFunc prints row tables as aligned columns and other tables
// as "name: value" lines
func DefaultTextTableRendererFunc(tableValues table.TableValues) string {
	var sb strings.Builder
	if len(tableValues.Fields) == 0 {
		return ""
	}
	if !tableValues.HasRows {
		nameWidth := 0
		for _, field := range tableValues.Fields {
			nameWidth = max(nameWidth, len(field.Name))
		}
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = field.Values[0]
			}
			sb.WriteString(fmt.Sprintf("%s%-*s %s\n", field.Name, nameWidth-len(field.Name)+1, ":", value))
		}
		return sb.String()
	}
	widths := columnWidths(tableValues.Fields)
	names := make([]string, len(tableValues.Fields))
	underlines := make([]string, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		names[i] = field.Name
		underlines[i] = strings.Repeat("-", len(field.Name))
	}
	writeTextRow(&sb, names, widths)
	writeTextRow(&sb, underlines, widths)
	cells := make([]string, len(tableValues.Fields))
	for row := range tableValues.NumRows() {
		for i, field := range tableValues.Fields {
			cells[i] = field.Values[row]
		}
		writeTextRow(&sb, cells, widths)
	}
	return sb.String()
}
