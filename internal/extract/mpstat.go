// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"fmt"

	"sclean/internal/affinity"
	"sclean/internal/schema"
	"sclean/internal/table"
)

// default mpstat statuses
var DefaultMpstatStatuses = []string{"usr", "sys", "iowait", "idle"}

// table names
const (
	MpstatTableName         = "mpstat"
	MpstatCoresTableName    = "mpstat cores"
	MpstatAveragesTableName = "mpstat averages"
)

// CoreSeries returns the detail rows of the requested cores, grouped by core in the
// order requested, and a warning for each core that has no rows.
func CoreSeries(ds *table.Dataset, cores []string) (series *table.Dataset, warnings []string) {
	detail := Detail(ds)
	series = table.NewDataset(detail.Columns)
	for _, core := range cores {
		matched := detail.Filter(func(r table.Record) bool {
			return matchCore(r.Get(affinity.CPUColumn), core)
		})
		if matched.Len() == 0 {
			warnings = append(warnings, fmt.Sprintf("CPU core %s is invalid", core))
			continue
		}
		series.Rows = append(series.Rows, matched.Rows...)
	}
	return series, warnings
}

// CoreAverages returns, per core found in the detail rows, the mean of each status column
func CoreAverages(ds *table.Dataset, statusColumns []string) *table.Dataset {
	return Means(Detail(ds), affinity.CPUColumn, statusColumns)
}

// Mpstat exports the per-core utilization, the series of the requested cores and the
// per-core averages.
func Mpstat(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.Mpstat}
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = DefaultMpstatStatuses
	}
	statusColumns, err := StatusColumns(ds, statuses)
	if err != nil {
		return result, err
	}
	cores := opts.Cores
	if len(cores) == 0 {
		cores = []string{"0"}
	}
	series, warnings := CoreSeries(ds, cores)
	result.Warnings = warnings

	var groups []string
	for _, core := range cores {
		for _, r := range series.Records() {
			if matchCore(r.Get(affinity.CPUColumn), core) {
				groups = append(groups, r.Get(affinity.CPUColumn))
				break
			}
		}
	}
	averages := CoreAverages(ds, statusColumns)
	result.Stats.Entities = averages.Len()

	result.Tables = append(result.Tables,
		newTable(MpstatTableName, "mpstat_data.csv", "", ds),
		newTable(MpstatCoresTableName, "mpstat_cores.csv", "mpstat", series, table.ChartDefinition{
			XaxisText:    "Time",
			YaxisText:    "CPU Usage(%)",
			XField:       xField(series),
			YFields:      statusColumns,
			GroupBy:      affinity.CPUColumn,
			Groups:       groups,
			SuggestedMin: "0",
			SuggestedMax: "100",
		}),
		newTable(MpstatAveragesTableName, "mpstat_avg.csv", "mpstat averages", averages, table.ChartDefinition{
			Type:    table.ChartPie,
			Title:   "Average CPU Usage",
			XField:  affinity.CPUColumn,
			YFields: statusColumns,
		}),
	)
	return result, nil
}
