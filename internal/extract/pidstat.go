// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"fmt"
	"log/slog"

	"sclean/internal/affinity"
	"sclean/internal/propagate"
	"sclean/internal/schema"
	"sclean/internal/table"
)

// default pidstat statuses
var DefaultPidstatStatuses = []string{"usr", "system", "cpu"}

// table names
const (
	PidstatCPUTableName    = "pidstat CPU"
	PidstatTotalsTableName = "pidstat CPU totals"
	PidstatMemTableName    = "pidstat memory"
	PidstatIOTableName     = "pidstat IO"
)

// ThreadSeries returns the detail rows of one thread, in log order
func ThreadSeries(ds *table.Dataset, tid string) *table.Dataset {
	return Detail(ds).Filter(func(r table.Record) bool {
		return r.Get(affinity.TidColumn) == tid
	})
}

// PidstatCPU aggregates the per-thread CPU summary rows, annotates them with the cores
// each thread ran on and partitions them into per-core buckets.
func PidstatCPU(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.PidstatCPU}
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = DefaultPidstatStatuses
	}
	statusColumns, err := StatusColumns(ds, statuses)
	if err != nil {
		return result, err
	}
	if !ds.HasColumn(propagate.ProcessColumn) {
		if err := propagate.Process(ds, affinity.TgidColumn, affinity.CommandColumn); err != nil {
			return result, err
		}
	}

	if opts.Thread != "" {
		series := ThreadSeries(ds, opts.Thread)
		if series.Len() == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("thread %s not found", opts.Thread))
		}
		result.Tables = append(result.Tables, newTable(
			"pidstat thread "+opts.Thread,
			"pidstat_thread_"+opts.Thread+".csv",
			"Thread "+opts.Thread,
			series,
			table.ChartDefinition{
				Title:        "Thread " + opts.Thread,
				XaxisText:    "Time",
				YaxisText:    "CPU Usage(%)",
				XField:       xField(series),
				YFields:      statusColumns,
				SuggestedMin: "0",
				SuggestedMax: "100",
			}))
	}

	records, stats, err := affinity.AggregateWithStats(ds, affinity.AggregateOptions{Source: opts.Source})
	if err != nil {
		return result, err
	}
	result.Stats.Malformed = stats.Malformed
	records = affinity.SelectThreads(records, opts.Processes)
	if opts.Filter != nil {
		var kept []affinity.AggregatedRecord
		for _, r := range records {
			ok, err := opts.Filter.Match(r.Record)
			if err != nil {
				return result, err
			}
			if ok {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	cores := opts.Cores
	if len(cores) == 0 {
		cores = affinity.PinnedCores(records)
	}
	buckets, warnings := affinity.Partition(records, cores)
	result.Warnings = append(result.Warnings, warnings...)
	result.Stats.Buckets = len(buckets)
	for _, b := range buckets {
		result.Stats.Entities += len(b.Records)
	}
	slog.Info("partitioned threads by core affinity", slog.String("source", opts.Source), slog.Int("threads", result.Stats.Entities), slog.Int("buckets", len(buckets)))

	result.Tables = append(result.Tables, table.FromDataset(table.TableDefinition{
		Name:      PidstatCPUTableName,
		FileName:  "pidstat_cpu.csv",
		MenuLabel: "pidstat CPU",
		HasRows:   true,
		Sections:  bucketSections(buckets),
	}, affinity.Flatten(buckets)))

	totals := table.NewDataset(append([]string{"bucket", affinity.ProcessColumn}, statusColumns...))
	var bucketNames []string
	for _, bt := range affinity.BucketTotals(buckets, statusColumns) {
		bucketNames = append(bucketNames, bt.Bucket)
		for _, row := range bt.Dataset(statusColumns).Rows {
			totals.Rows = append(totals.Rows, append([]string{bt.Bucket}, row...))
		}
	}
	result.Tables = append(result.Tables, newTable(PidstatTotalsTableName, "pidstat_cpu_totals.csv", "", totals,
		table.ChartDefinition{
			Type:         table.ChartBar,
			XaxisText:    "Process",
			YaxisText:    "CPU Usage(%)",
			XField:       affinity.ProcessColumn,
			YFields:      statusColumns,
			GroupBy:      "bucket",
			Groups:       bucketNames,
			SuggestedMin: "0",
			SuggestedMax: "100",
		}))
	return result, nil
}

// PidstatMem exports the memory view and charts vsz, rss and %mem per command
func PidstatMem(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.PidstatMem}
	groups, warnings := Groups(ds, affinity.CommandColumn, opts.Processes)
	result.Warnings = warnings
	result.Stats.Entities = len(groups)
	x := xField(ds)
	charts := []table.ChartDefinition{
		{Title: "VSZ", XaxisText: "Time", YaxisText: "VSZ(M)", XField: x, YFields: []string{"vsz"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"},
		{Title: "RSS", XaxisText: "Time", YaxisText: "RSS(M)", XField: x, YFields: []string{"rss"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"},
	}
	if ds.HasColumn("%mem") {
		charts = append(charts, table.ChartDefinition{Title: "Memory Usage Percentages", XaxisText: "Time", YaxisText: "Mem(%)", XField: x, YFields: []string{"%mem"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"})
	}
	result.Tables = append(result.Tables, newTable(PidstatMemTableName, "pidstat_mem.csv", "pidstat memory", ds, charts...))
	return result, nil
}

// PidstatIO exports the IO view and charts read, write, cancelled write and IO delay per command
func PidstatIO(ds *table.Dataset, opts Options) (Result, error) {
	result := Result{LogType: schema.PidstatIO}
	groups, warnings := Groups(ds, affinity.CommandColumn, opts.Processes)
	result.Warnings = warnings
	result.Stats.Entities = len(groups)
	x := xField(ds)
	charts := []table.ChartDefinition{
		{Title: "Read from Disk", XaxisText: "Time", YaxisText: "Read(kb/s)", XField: x, YFields: []string{"kb_rd/s"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"},
		{Title: "Write to Disk", XaxisText: "Time", YaxisText: "Write(kb/s)", XField: x, YFields: []string{"kb_wr/s"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"},
	}
	if ds.HasColumn("kb_ccwr/s") {
		charts = append(charts, table.ChartDefinition{Title: "CCWR", XaxisText: "Time", YaxisText: "CCWR(kb/s)", XField: x, YFields: []string{"kb_ccwr/s"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"})
	}
	if ds.HasColumn("iodelay") {
		charts = append(charts, table.ChartDefinition{Title: "IO Delay", XaxisText: "Time", YaxisText: "Clock Cycle", XField: x, YFields: []string{"iodelay"}, GroupBy: affinity.CommandColumn, Groups: groups, SuggestedMin: "0"})
	}
	result.Tables = append(result.Tables, newTable(PidstatIOTableName, "pidstat_io.csv", "pidstat IO", ds, charts...))
	return result, nil
}
