// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"fmt"

	"sclean/internal/affinity"
	"sclean/internal/schema"
	"sclean/internal/table"
)

// table names
const (
	ProcrankTableName = "procrank"
	FreeTableName     = "free"
	TcmallocTableName = "tcmalloc"
	HogsTableName     = "hogs"
)

// Procrank exports the procrank samples and charts pss and uss per command
func Procrank(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.Procrank}
	groups, warnings := Groups(ds, affinity.CommandColumn, opts.Processes)
	result.Warnings = warnings
	result.Stats.Entities = len(groups)
	x := xField(ds)
	result.Tables = append(result.Tables, newTable(ProcrankTableName, "procrank_data.csv", "procrank", ds,
		table.ChartDefinition{Title: "PSS", XaxisText: "Time", YaxisText: "PSS(M)", XField: x, YFields: []string{"pss"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"},
		table.ChartDefinition{Title: "USS", XaxisText: "Time", YaxisText: "USS(M)", XField: x, YFields: []string{"uss"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"},
	))
	return result, nil
}

// MemRows returns the "Mem:" rows of a free log
func MemRows(ds *table.Dataset) *table.Dataset {
	return SelectValues(ds, "type", []string{"Mem:"})
}

// Free exports the available memory of the "Mem:" rows
func Free(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.Free}
	mem := MemRows(ds)
	if mem.Len() == 0 {
		result.Warnings = append(result.Warnings, "no Mem: rows found")
	}
	result.Stats.Entities = mem.Len()
	result.Tables = append(result.Tables, newTable(FreeTableName, "free_data.csv", "free", mem,
		table.ChartDefinition{
			Title:        "Available Memory Statistics",
			XaxisText:    "Time",
			YaxisText:    "Available Memory(M)",
			XField:       xField(mem),
			YFields:      []string{"available"},
			SuggestedMin: "0",
		}))
	return result, nil
}

// Tcmalloc exports the allocator samples and charts memory per thread
func Tcmalloc(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.Tcmalloc}
	groups, _ := Groups(ds, affinity.TidColumn, nil)
	result.Stats.Entities = len(groups)
	result.Tables = append(result.Tables, newTable(TcmallocTableName, "tcmalloc_data.csv", "tcmalloc", ds,
		table.ChartDefinition{
			Title:        "Memory Usage of Thread",
			XaxisText:    "Time",
			YaxisText:    "Mem Size(M)",
			YFields:      []string{"mem"},
			GroupBy:      affinity.TidColumn,
			Groups:       groups,
			SuggestedMin: "0",
		}))
	return result, nil
}

// Hogs exports the hogs samples, optionally for one pid, and charts the CPU usage
func Hogs(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.Hogs}
	data := ds
	title := "CPU Usage Statistics"
	if opts.Thread != "" {
		data = SelectValues(ds, "pid", []string{opts.Thread})
		if data.Len() == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("pid %s not found", opts.Thread))
		}
		title = "CPU Usage Statistics of " + opts.Thread
	}
	groups, _ := Groups(data, "pid", nil)
	result.Stats.Entities = len(groups)
	result.Tables = append(result.Tables, newTable(HogsTableName, "hogs_data.csv", "hogs", data,
		table.ChartDefinition{
			Title:        title,
			XaxisText:    "Time",
			YaxisText:    "CPU Used(%)",
			YFields:      []string{"sys"},
			SuggestedMin: "0",
			SuggestedMax: "100",
		}))
	return result, nil
}
