// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"fmt"
	"slices"
	"strings"

	"sclean/internal/schema"
	"sclean/internal/table"
)

// VmstatSection is a group of vmstat columns charted together
type VmstatSection struct {
	Name      string
	Title     string
	YaxisText string
	Columns   []string
}

// VmstatSections lists the selectable sections in report order
var VmstatSections = []VmstatSection{
	{Name: "memory", Title: "Memory", YaxisText: "Mem Usage(M)", Columns: []string{"swpd", "free", "buff", "cache"}},
	{Name: "io", Title: "IO", YaxisText: "IO Usage(Blocks/s)", Columns: []string{"bi", "bo"}},
	{Name: "system", Title: "System", YaxisText: "System Usage(Times/s)", Columns: []string{"in", "cs"}},
	{Name: "cpu", Title: "CPU", YaxisText: "CPU Usage(%)", Columns: []string{"us", "sy", "id", "wa", "st"}},
}

// VmstatSectionNames returns the names of the selectable sections
func VmstatSectionNames() []string {
	var names []string
	for _, s := range VmstatSections {
		names = append(names, s.Name)
	}
	return names
}

// VmstatTableName is the name of the processed vmstat table
const VmstatTableName = "vmstat"

// Vmstat exports the vmstat samples with one chart per selected section
func Vmstat(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.Vmstat}
	selected := opts.VmstatSections
	if len(selected) == 0 {
		selected = []string{"memory"}
	}
	for _, name := range selected {
		if !slices.Contains(VmstatSectionNames(), strings.ToLower(name)) {
			return result, fmt.Errorf("unknown vmstat section %s, valid sections: %s", name, strings.Join(VmstatSectionNames(), ", "))
		}
	}
	var charts []table.ChartDefinition
	for _, section := range VmstatSections {
		if !slices.ContainsFunc(selected, func(s string) bool { return strings.EqualFold(s, section.Name) }) {
			continue
		}
		var columns []string
		for _, c := range section.Columns {
			if ds.HasColumn(c) {
				columns = append(columns, c)
			}
		}
		if len(columns) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("vmstat section %s has no columns in this log", section.Name))
			continue
		}
		chart := table.ChartDefinition{
			Title:        section.Title,
			XaxisText:    "Time",
			YaxisText:    section.YaxisText,
			YFields:      columns,
			SuggestedMin: "0",
		}
		if section.Name == "cpu" {
			chart.SuggestedMax = "100"
		}
		charts = append(charts, chart)
	}
	result.Stats.Entities = ds.Len()
	result.Tables = append(result.Tables, newTable(VmstatTableName, "vmstat_data.csv", "vmstat", ds, charts...))
	return result, nil
}
