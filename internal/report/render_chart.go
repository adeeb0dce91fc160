package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	texttemplate "text/template" // nosemgrep

	"sclean/internal/table"
)

const datasetTemplate = `
{
	label: '{{.Label}}',
	data: [{{.Data}}],
	backgroundColor: '{{.Color}}',
	borderColor: '{{.Color}}',
	borderWidth: 1,
	showLine: true,
	hidden: {{.Hidden}}
}
`

// categoryChartTemplate draws line and bar charts over a category x-axis
const categoryChartTemplate = `<div class="chart-container" style="max-width: 900px">
<canvas id="{{.ID}}"></canvas>
</div>
<script>
new Chart(document.getElementById('{{.ID}}'), {
    type: '{{.Type}}',
    data: {
		labels: [{{.Labels}}],
        datasets: [{{.Datasets}}]
    },
    options: {
        aspectRatio: {{.AspectRatio}},
        scales: {
            x: {
                beginAtZero: false,
                title: {
                    text: "{{.XaxisText}}",
                    display: true
                },
				ticks: {
					maxRotation: 90,
					minRotation: 45
                }
            },
            y: {
                title: {
                    text: "{{.YaxisText}}",
                    display: true
                },
				suggestedMin: {{.SuggestedMin}},
				suggestedMax: {{.SuggestedMax}},
            }
        },
        plugins: {
            title: {
                text: "{{.TitleText}}",
                display: {{.DisplayTitle}},
                font: {
                    size: 18
                }
            },
            legend: {
                display: {{.DisplayLegend}}
            }
        }
    }
});
</script>
`

const pieChartTemplate = `<div class="chart-container" style="max-width: 450px; display: inline-block">
<canvas id="{{.ID}}"></canvas>
</div>
<script>
new Chart(document.getElementById('{{.ID}}'), {
    type: 'pie',
    data: {
		labels: [{{.Labels}}],
        datasets: [{
			data: [{{.Datasets}}],
			backgroundColor: [{{.Colors}}]
		}]
    },
    options: {
        aspectRatio: {{.AspectRatio}},
        plugins: {
            title: {
                text: "{{.TitleText}}",
                display: {{.DisplayTitle}},
                font: {
                    size: 18
                }
            },
            legend: {
                display: {{.DisplayLegend}}
            }
        }
    }
});
</script>
`

type ChartTemplateStruct struct {
	ID            string
	Type          string // set by RenderChart
	Labels        string
	Datasets      string
	Colors        string // only for pie charts
	XaxisText     string
	YaxisText     string
	TitleText     string
	DisplayTitle  string
	DisplayLegend string
	AspectRatio   string
	SuggestedMin  string
	SuggestedMax  string
}

// RenderChart generates an HTML/JavaScript representation of a chart using the provided data and configuration.
// Parameters:
//   - chartType: the type of chart to render ("line", "bar", "pie").
//   - allFormattedPoints: a slice of strings, each representing formatted data points for a dataset.
//     Pie charts take a single dataset.
//   - datasetNames: a slice of dataset names corresponding to each dataset.
//   - xAxisLabels: a slice of labels for the x-axis, or the slice labels of a pie chart.
//   - config: a ChartTemplateStruct containing chart configuration and template variables.
//   - datasetHiddenFlags: a slice of booleans indicating whether each dataset should be hidden initially.
//
// Returns:
//   - A string containing the rendered chart HTML/JavaScript, or an error message if rendering fails.
func RenderChart(chartType string, allFormattedPoints []string, datasetNames []string, xAxisLabels []string, config ChartTemplateStruct, datasetHiddenFlags []bool) string {
	var labels []string
	for _, label := range xAxisLabels {
		labels = append(labels, fmt.Sprintf("'%s'", texttemplate.JSEscapeString(label)))
	}
	config.Labels = strings.Join(labels, ",")
	config.Type = chartType
	var chartTemplate string
	switch chartType {
	case table.ChartLine, table.ChartBar:
		chartTemplate = categoryChartTemplate
		datasets := []string{}
		for dataIdx, formattedPoints := range allFormattedPoints {
			dst := texttemplate.Must(texttemplate.New("datasetTemplate").Parse(datasetTemplate))
			buf := new(bytes.Buffer)
			// determine hidden flag for this dataset
			hidden := "false"
			if datasetHiddenFlags != nil && dataIdx < len(datasetHiddenFlags) && datasetHiddenFlags[dataIdx] {
				hidden = "true"
			}
			err := dst.Execute(buf, struct {
				Label  string
				Data   string
				Color  string
				Hidden string
			}{
				Label:  texttemplate.JSEscapeString(datasetNames[dataIdx]),
				Data:   formattedPoints,
				Color:  getColor(dataIdx),
				Hidden: hidden,
			})
			if err != nil {
				slog.Error("error executing template", slog.String("error", err.Error()))
				return "Error rendering chart."
			}
			datasets = append(datasets, buf.String())
		}
		config.Datasets = strings.Join(datasets, ",")
	case table.ChartPie:
		chartTemplate = pieChartTemplate
		if len(allFormattedPoints) > 0 {
			config.Datasets = allFormattedPoints[0]
		}
		var colors []string
		for i := range xAxisLabels {
			colors = append(colors, fmt.Sprintf("'%s'", getColor(i)))
		}
		config.Colors = strings.Join(colors, ",")
	default:
		slog.Error("unknown chart type", slog.String("type", chartType))
		return "Error rendering chart."
	}
	sct := texttemplate.Must(texttemplate.New("chartTemplate").Parse(chartTemplate))
	buf := new(bytes.Buffer)
	err := sct.Execute(buf, config)
	if err != nil {
		slog.Error("error executing template", slog.String("error", err.Error()))
		return "Error rendering chart."
	}
	out := buf.String()
	out += "\n"
	return out
}

// RenderTableChart renders the charts a definition describes for a table. Line and bar
// definitions give one chart per group, or a single chart when GroupBy is empty. Pie
// definitions give one chart per row. idPrefix must be unique within the report.
func RenderTableChart(tableValues table.TableValues, chart table.ChartDefinition, idPrefix string) string {
	chartType := chart.Type
	if chartType == "" {
		chartType = table.ChartLine
	}
	if chartType == table.ChartPie {
		return renderPieCharts(tableValues, chart, idPrefix)
	}
	var sb strings.Builder
	for groupIdx, group := range chartGroups(tableValues, chart) {
		rows := groupRows(tableValues, chart.GroupBy, group)
		if len(rows) == 0 {
			continue
		}
		var allFormattedPoints, datasetNames []string
		for _, yField := range chart.YFields {
			fieldIdx, err := table.GetFieldIndex(yField, tableValues)
			if err != nil {
				slog.Debug("chart field not found", slog.String("table", tableValues.Name), slog.String("field", yField))
				continue
			}
			allFormattedPoints = append(allFormattedPoints, formatPoints(tableValues.Fields[fieldIdx].Values, rows))
			datasetNames = append(datasetNames, yField)
		}
		if len(allFormattedPoints) == 0 {
			continue
		}
		title := chartTitle(tableValues, chart)
		if chart.GroupBy != "" {
			title = strings.TrimSpace(title + " " + group)
		}
		config := ChartTemplateStruct{
			ID:            fmt.Sprintf("%s_%d", idPrefix, groupIdx),
			XaxisText:     chart.XaxisText,
			YaxisText:     chart.YaxisText,
			TitleText:     texttemplate.JSEscapeString(title),
			DisplayTitle:  "true",
			DisplayLegend: "true",
			AspectRatio:   "2",
			SuggestedMin:  jsNumber(chart.SuggestedMin),
			SuggestedMax:  jsNumber(chart.SuggestedMax),
		}
		sb.WriteString(RenderChart(chartType, allFormattedPoints, datasetNames, xLabels(tableValues, chart.XField, rows), config, nil))
	}
	return sb.String()
}

func renderPieCharts(tableValues table.TableValues, chart table.ChartDefinition, idPrefix string) string {
	var sb strings.Builder
	labels := xLabels(tableValues, chart.XField, allRows(tableValues))
	for row := range tableValues.NumRows() {
		var points, sliceNames []string
		for _, yField := range chart.YFields {
			fieldIdx, err := table.GetFieldIndex(yField, tableValues)
			if err != nil {
				continue
			}
			points = append(points, formatPoints(tableValues.Fields[fieldIdx].Values, []int{row}))
			sliceNames = append(sliceNames, yField)
		}
		if len(points) == 0 {
			continue
		}
		title := strings.TrimSpace(chartTitle(tableValues, chart) + " " + labels[row])
		config := ChartTemplateStruct{
			ID:            fmt.Sprintf("%s_%d", idPrefix, row),
			TitleText:     texttemplate.JSEscapeString(title),
			DisplayTitle:  "true",
			DisplayLegend: "true",
			AspectRatio:   "1",
		}
		sb.WriteString(RenderChart(table.ChartPie, []string{strings.Join(points, ",")}, nil, sliceNames, config, nil))
	}
	return sb.String()
}

func chartTitle(tableValues table.TableValues, chart table.ChartDefinition) string {
	if chart.Title != "" {
		return chart.Title
	}
	return tableValues.Name
}

// chartGroups returns the groups to draw, a single unnamed group when the chart is not grouped
func chartGroups(tableValues table.TableValues, chart table.ChartDefinition) []string {
	if chart.GroupBy == "" {
		return []string{""}
	}
	if len(chart.Groups) > 0 {
		return chart.Groups
	}
	fieldIdx, err := table.GetFieldIndex(chart.GroupBy, tableValues)
	if err != nil {
		return nil
	}
	var groups []string
	seen := make(map[string]bool)
	for _, v := range tableValues.Fields[fieldIdx].Values {
		if !seen[v] {
			seen[v] = true
			groups = append(groups, v)
		}
	}
	return groups
}

func allRows(tableValues table.TableValues) []int {
	rows := make([]int, tableValues.NumRows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// groupRows returns the indices of the rows whose groupBy value is group, all rows when groupBy is empty
func groupRows(tableValues table.TableValues, groupBy string, group string) []int {
	if groupBy == "" {
		return allRows(tableValues)
	}
	fieldIdx, err := table.GetFieldIndex(groupBy, tableValues)
	if err != nil {
		return nil
	}
	var rows []int
	for i, v := range tableValues.Fields[fieldIdx].Values {
		if v == group {
			rows = append(rows, i)
		}
	}
	return rows
}

// xLabels returns the x-axis labels of the rows, the sample index when the field is absent
func xLabels(tableValues table.TableValues, xField string, rows []int) []string {
	labels := make([]string, len(rows))
	fieldIdx, err := table.GetFieldIndex(xField, tableValues)
	for i, row := range rows {
		if err != nil || xField == "" {
			labels[i] = strconv.Itoa(i)
			continue
		}
		labels[i] = tableValues.Fields[fieldIdx].Values[row]
	}
	return labels
}

// formatPoints formats the values of the rows, values that are not numbers become null
func formatPoints(values []string, rows []int) string {
	points := make([]string, len(rows))
	for i, row := range rows {
		if v, err := strconv.ParseFloat(values[row], 64); err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			points[i] = "null"
			continue
		}
		points[i] = values[row]
	}
	return strings.Join(points, ",")
}

func jsNumber(value string) string {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return "null"
	}
	return value
}

func getColor(idx int) string {
	// color-blind safe palette from here: http://mkweb.bcgsc.ca/colorblind/palettes.mhtml#page-container
	colors := []string{"#9F0162", "#009F81", "#FF5AAF", "#00FCCF", "#8400CD", "#008DF9", "#00C2F9", "#FFB2FD", "#A40122", "#E20134", "#FF6E3A", "#FFC33B"}
	return colors[idx%len(colors)]
}
