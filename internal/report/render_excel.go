package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sclean/internal/table"
)

var customXlsxRenderers = map[string]table.XlsxTableRenderer{}

// RegisterXlsxRenderer replaces the default xlsx rendering of the named table. The
// renderer writes from *row onward and leaves *row below its output.
func RegisterXlsxRenderer(tableName string, renderer table.XlsxTableRenderer) {
	customXlsxRenderers[tableName] = renderer
}

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// absoluteRange returns a range such as 'mpstat'!$B$2:$B$10
func absoluteRange(sheetName string, col int, firstRow int, lastRow int) string {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheetName, columnName, firstRow, columnName, lastRow)
}

// WriteXlsxHeading writes text in bold into the first column of *row and moves to the next row
func WriteXlsxHeading(f *excelize.File, sheetName string, row *int, text string) {
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellValue(sheetName, cellName(1, *row), text)
	_ = f.SetCellStyle(sheetName, cellName(1, *row), cellName(1, *row), style)
	*row++
}

func renderXlsxTable(tableValues table.TableValues, f *excelize.File, sheetName string, row *int) {
	WriteXlsxHeading(f, sheetName, row, tableValues.Name)
	if noData(tableValues) {
		_ = f.SetCellValue(sheetName, cellName(1, *row), noDataMessage(tableValues))
		*row += 2
		return
	}
	if renderer := customXlsxRenderers[tableValues.Name]; renderer != nil {
		renderer(tableValues, f, sheetName, row)
	} else {
		DefaultXlsxTableRendererFunc(tableValues, f, sheetName, row)
	}
	*row++
}

func DefaultXlsxTableRendererFunc(tableValues table.TableValues, f *excelize.File, sheetName string, row *int) {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	alignLeft, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
		},
	})
	if tableValues.HasRows {
		// print the field names as column headings across the top of the table
		col := 2
		headerRow := *row
		for _, field := range tableValues.Fields {
			_ = f.SetCellValue(sheetName, cellName(col, *row), field.Name)
			_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), headerStyle)
			col++
		}
		col = 2
		*row++
		// print the rows
		tableRows := len(tableValues.Fields[0].Values)
		for tableRow := range tableRows {
			for _, field := range tableValues.Fields {
				value := getValueForCell(field.Values[tableRow])
				_ = f.SetCellValue(sheetName, cellName(col, *row), value)
				_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), alignLeft)
				col++
			}
			col = 2
			*row++
		}
		addXlsxCharts(tableValues, f, sheetName, headerRow)
	} else {
		// print the field name followed by its value
		col := 1
		for _, field := range tableValues.Fields {
			var fieldValue string
			if len(tableValues.Fields[0].Values) > 0 {
				fieldValue = field.Values[0]
			}
			_ = f.SetCellValue(sheetName, cellName(col, *row), field.Name)
			col++
			value := getValueForCell(fieldValue)
			_ = f.SetCellValue(sheetName, cellName(col, *row), value)
			_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), alignLeft)
			col = 1
			*row++
		}
	}
}

// addXlsxCharts adds a native chart, to the right of the table, for each ungrouped line or
// bar chart definition. Grouped and pie charts are only rendered in the html report.
func addXlsxCharts(tableValues table.TableValues, f *excelize.File, sheetName string, headerRow int) {
	numRows := tableValues.NumRows()
	firstRow, lastRow := headerRow+1, headerRow+numRows
	anchorCol := len(tableValues.Fields) + 3
	anchorRow := headerRow
	for _, chart := range tableValues.Charts {
		if chart.GroupBy != "" || chart.Type == table.ChartPie {
			continue
		}
		chartType := excelize.Line
		if chart.Type == table.ChartBar {
			chartType = excelize.Col
		}
		var categories string
		if idx, err := table.GetFieldIndex(chart.XField, tableValues); err == nil {
			categories = absoluteRange(sheetName, idx+2, firstRow, lastRow)
		}
		var series []excelize.ChartSeries
		for _, yField := range chart.YFields {
			idx, err := table.GetFieldIndex(yField, tableValues)
			if err != nil {
				continue
			}
			series = append(series, excelize.ChartSeries{
				Name:       fmt.Sprintf("'%s'!$%s$%d", sheetName, columnName(idx+2), headerRow),
				Categories: categories,
				Values:     absoluteRange(sheetName, idx+2, firstRow, lastRow),
			})
		}
		if len(series) == 0 {
			continue
		}
		err := f.AddChart(sheetName, cellName(anchorCol, anchorRow), &excelize.Chart{
			Type:   chartType,
			Series: series,
			Title:  []excelize.RichTextRun{{Text: chartTitle(tableValues, chart)}},
			XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.XaxisText}}},
			YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: chart.YaxisText}}},
			Legend: excelize.ChartLegend{Position: "bottom"},
		})
		if err != nil {
			slog.Warn("failed to add chart to xlsx report", slog.String("table", tableValues.Name), slog.String("error", err.Error()))
			continue
		}
		anchorRow += 20
	}
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name
}

// xlsxSheetName returns a valid, unique sheet name for a table
func xlsxSheetName(f *excelize.File, name string) string {
	sheetName := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]'`, r) {
			return '_'
		}
		return r
	}, name)
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Table"
	}
	candidate := sheetName
	for i := 2; ; i++ {
		if idx, _ := f.GetSheetIndex(candidate); idx == -1 {
			return candidate
		}
		suffix := strconv.Itoa(i)
		if len(sheetName)+len(suffix) > 31 {
			candidate = sheetName[:31-len(suffix)] + suffix
		} else {
			candidate = sheetName + suffix
		}
	}
}

// createXlsxReport writes each table into its own sheet
func createXlsxReport(allTableValues []table.TableValues) (out []byte, err error) {
	f := excelize.NewFile()
	for i, tableValues := range allTableValues {
		sheetName := xlsxSheetName(f, tableValues.Name)
		if i == 0 {
			_ = f.SetSheetName("Sheet1", sheetName)
		} else if _, err = f.NewSheet(sheetName); err != nil {
			err = fmt.Errorf("failed to add sheet %s to xlsx report: %v", sheetName, err)
			return
		}
		_ = f.SetColWidth(sheetName, "A", "A", 15)
		_ = f.SetColWidth(sheetName, "B", "Z", 15)
		row := 1
		renderXlsxTable(tableValues, f, sheetName, &row)
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	_, err = f.WriteTo(w)
	if err != nil {
		err = fmt.Errorf("failed to write xlsx report to buffer: %v", err)
		return
	}
	if err = w.Flush(); err != nil {
		err = fmt.Errorf("failed to flush xlsx report: %v", err)
		return
	}
	out = buf.Bytes()
	return
}

func getValueForCell(value string) (val any) {
	intValue, err := strconv.Atoi(value)
	if err == nil {
		val = intValue
		return
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err == nil {
		val = floatValue
		return
	}
	val = value
	return
}
