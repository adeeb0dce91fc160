package affinity

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"sclean/internal/table"
	"sclean/internal/util"

	mapset "github.com/deckarep/golang-set/v2"
)

// UnboundBucket holds the entities observed on more than one core
const UnboundBucket = "Other/Unbound"

// Bucket is a named group of aggregated records sharing one classification
type Bucket struct {
	Name    string
	Core    string // empty for the unbound bucket
	Records []AggregatedRecord
}

// BucketName returns the name of the bucket for a pinned core
func BucketName(core string) string {
	return "CPU" + util.OnlyDigits(core)
}

// Sort orders records by cardinality. Pinned records are then ordered by core,
// process name and entity key. The rest are ordered by process name and entity key.
func Sort(records []AggregatedRecord) {
	slices.SortStableFunc(records, func(a, b AggregatedRecord) int {
		if c := cmp.Compare(a.Cardinality, b.Cardinality); c != 0 {
			return c
		}
		if a.Cardinality == 1 {
			if c := compareCores(a.Cores[0], b.Cores[0]); c != 0 {
				return c
			}
		}
		if c := strings.Compare(a.Process, b.Process); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

// Partition assigns pinned records to one bucket per requested core, in the order the
// cores were requested, followed by one unbound bucket for records seen on several cores.
// Empty buckets are omitted; an empty core bucket is reported as a warning. Core names
// are compared on their digits only, so "0" and "CPU0" select the same bucket.
func Partition(records []AggregatedRecord, cores []string) (buckets []Bucket, warnings []string) {
	sorted := slices.Clone(records)
	Sort(sorted)

	var requested []string
	for _, core := range cores {
		requested = util.UniqueAppend(requested, util.OnlyDigits(core))
	}
	for _, core := range requested {
		bucket := Bucket{Name: BucketName(core), Core: core}
		for _, r := range sorted {
			if r.Cardinality == 1 && util.OnlyDigits(r.Cores[0]) == core {
				bucket.Records = append(bucket.Records, r)
			}
		}
		if len(bucket.Records) == 0 {
			warnings = append(warnings, fmt.Sprintf("CPU core %s is invalid or has no pinned entities", core))
			continue
		}
		buckets = append(buckets, bucket)
	}
	unbound := Bucket{Name: UnboundBucket}
	for _, r := range sorted {
		if r.Cardinality > 1 {
			unbound.Records = append(unbound.Records, r)
		}
	}
	if len(unbound.Records) > 0 {
		buckets = append(buckets, unbound)
	}
	return buckets, warnings
}

// PinnedCores returns the distinct cores of the pinned records in ascending order
func PinnedCores(records []AggregatedRecord) []string {
	cores := mapset.NewSet[string]()
	for _, r := range records {
		if r.Cardinality == 1 {
			cores.Add(util.OnlyDigits(r.Cores[0]))
		}
	}
	return sortCores(cores.ToSlice())
}

// SelectThreads keeps thread rows and, when processes is not empty, only the threads
// whose process is listed.
func SelectThreads(records []AggregatedRecord, processes []string) []AggregatedRecord {
	wanted := mapset.NewSet(processes...)
	var out []AggregatedRecord
	for _, r := range records {
		if r.Get(TgidColumn) != "-" {
			continue
		}
		if wanted.Cardinality() > 0 && !wanted.Contains(r.Process) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Flatten concatenates the buckets into one dataset in bucket order. The cpu column
// holds the comma-joined core list and a process column is added when the records
// have none.
func Flatten(buckets []Bucket) *table.Dataset {
	var columns []string
	for _, b := range buckets {
		if len(b.Records) > 0 {
			columns = b.Records[0].Columns()
			break
		}
	}
	if columns == nil {
		return table.NewDataset(nil)
	}
	addProcess := !slices.Contains(columns, ProcessColumn)
	outColumns := slices.Clone(columns)
	if addProcess {
		outColumns = append(outColumns, ProcessColumn)
	}
	ds := table.NewDataset(outColumns)
	for _, b := range buckets {
		for _, r := range b.Records {
			row := make([]string, 0, len(outColumns))
			for _, column := range columns {
				if column == CPUColumn {
					row = append(row, strings.Join(r.Cores, ","))
				} else {
					row = append(row, r.Get(column))
				}
			}
			if addProcess {
				row = append(row, r.Process)
			}
			ds.Rows = append(ds.Rows, row)
		}
	}
	return ds
}

// BucketTotal holds, for one bucket, the per-process sum of the requested status columns
type BucketTotal struct {
	Bucket    string
	Processes []string             // in first-seen order
	Totals    map[string][]float64 // status column -> one value per process
}

// BucketTotals sums the status columns per process within each bucket. Values that
// are not numeric are ignored.
func BucketTotals(buckets []Bucket, statuses []string) []BucketTotal {
	var out []BucketTotal
	for _, b := range buckets {
		total := BucketTotal{Bucket: b.Name, Totals: make(map[string][]float64)}
		index := make(map[string]int)
		for _, r := range b.Records {
			i, ok := index[r.Process]
			if !ok {
				i = len(total.Processes)
				index[r.Process] = i
				total.Processes = append(total.Processes, r.Process)
				for _, status := range statuses {
					total.Totals[status] = append(total.Totals[status], 0)
				}
			}
			for _, status := range statuses {
				v, err := strconv.ParseFloat(r.Get(status), 64)
				if err != nil {
					continue
				}
				total.Totals[status][i] += v
			}
		}
		out = append(out, total)
	}
	return out
}

// Dataset converts the totals into a table with a process column and one column per status
func (bt BucketTotal) Dataset(statuses []string) *table.Dataset {
	ds := table.NewDataset(append([]string{ProcessColumn}, statuses...))
	for i, process := range bt.Processes {
		row := []string{process}
		for _, status := range statuses {
			row = append(row, util.FormatFloat(bt.Totals[status][i]))
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}
