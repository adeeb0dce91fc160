package extract

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sclean/internal/affinity"
	"sclean/internal/normalize"
	"sclean/internal/schema"
	"sclean/internal/table"
)

const pidstatThreads = `Linux 5.15.0-91-generic (host) 	01/15/2024 	_x86_64_	(8 CPU)

10:00:01      UID      TGID       TID    %usr %system  %guest   %wait    %CPU   CPU  Command
10:00:02     1000       100         -    3.00    1.00    0.00    0.00    4.00     0  app
10:00:02     1000         -       100    1.00    0.00    0.00    0.00    1.00     0  |__app
10:00:02     1000         -       101    2.00    1.00    0.00    0.00    3.00     1  |__worker
10:00:03     1000       100         -    3.00    1.00    0.00    0.00    4.00     0  app
10:00:03     1000         -       100    1.00    0.00    0.00    0.00    1.00     0  |__app
10:00:03     1000         -       101    2.00    1.00    0.00    0.00    3.00     2  |__worker
10:00:03     1000       200         -    5.00    0.00    0.00    0.00    5.00     3  db
10:00:03     1000         -       200    5.00    0.00    0.00    0.00    5.00     3  |__db

Average:      UID      TGID       TID    %usr %system  %guest   %wait    %CPU   CPU  Command
Average:     1000       100         -    3.00    1.00    0.00    0.00    4.00     -  app
Average:     1000         -       100    1.00    0.00    0.00    0.00    1.00     -  |__app
Average:     1000         -       101    2.00    1.00    0.00    0.00    3.00     -  |__worker
Average:     1000       200         -    5.00    0.00    0.00    0.00    5.00     -  db
Average:     1000         -       200    5.00    0.00    0.00    0.00    5.00     -  |__db
`

const mpstatOutput = `Linux 5.15.0-91-generic (host) 	01/15/2024 	_x86_64_	(2 CPU)

10:00:01     CPU    %usr   %nice    %sys %iowait    %irq   %soft  %steal  %guest  %gnice   %idle
10:00:02     all    2.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   97.00
10:00:02       0    3.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   96.00
10:00:02       1    1.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   98.00

10:00:02     CPU    %usr   %nice    %sys %iowait    %irq   %soft  %steal  %guest  %gnice   %idle
10:00:03     all    4.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   95.00
10:00:03       0    5.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   94.00
10:00:03       1    3.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   96.00

Average:     CPU    %usr   %nice    %sys %iowait    %irq   %soft  %steal  %guest  %gnice   %idle
Average:     all    3.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   96.00
Average:       0    4.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   95.00
Average:       1    2.00    0.00    1.00    0.00    0.00    0.00    0.00    0.00    0.00   97.00
`

func shape(t *testing.T, logType string, text string) *table.Dataset {
	t.Helper()
	variant := schema.MustLookup(logType)
	rows, err := normalize.NormalizeReader(strings.NewReader(text), normalize.Options{Include: variant.Include})
	require.NoError(t, err)
	ds, _, err := variant.Shape(rows)
	require.NoError(t, err)
	return ds
}

func column(t *testing.T, tv table.TableValues, name string) []string {
	t.Helper()
	idx, err := table.GetFieldIndex(name, tv)
	require.NoError(t, err)
	return tv.Fields[idx].Values
}

func findTable(t *testing.T, result Result, name string) table.TableValues {
	t.Helper()
	for _, tv := range result.Tables {
		if tv.Name == name {
			return tv
		}
	}
	require.Failf(t, "table not found", "table %s", name)
	return table.TableValues{}
}

type processFilter string

func (f processFilter) Match(r table.Record) (bool, error) {
	return r.Get("process") == string(f), nil
}

type failingFilter struct{}

func (failingFilter) Match(table.Record) (bool, error) {
	return false, errors.New("bad expression")
}

func TestPidstatCPU(t *testing.T) {
	result, err := PidstatCPU(shape(t, schema.PidstatCPU, pidstatThreads), Options{Source: "pidstat.log"})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 3, result.Stats.Buckets)
	assert.Equal(t, 3, result.Stats.Entities)

	cpu := findTable(t, result, PidstatCPUTableName)
	assert.Equal(t, "pidstat_cpu.csv", cpu.FileName)
	assert.Equal(t, []string{"100", "200", "101"}, column(t, cpu, "tid"))
	assert.Equal(t, []string{"0", "3", "1,2"}, column(t, cpu, "cpu"))
	assert.Equal(t, []string{"app", "db", "app"}, column(t, cpu, "process"))

	totals := findTable(t, result, PidstatTotalsTableName)
	assert.Equal(t, []string{"CPU0", "CPU3", affinity.UnboundBucket}, column(t, totals, "bucket"))
	assert.Equal(t, []string{"1", "5", "3"}, column(t, totals, "%cpu"))
	require.Len(t, totals.Charts, 1)
	assert.Equal(t, table.ChartBar, totals.Charts[0].Type)
	assert.Equal(t, []string{"CPU0", "CPU3", affinity.UnboundBucket}, totals.Charts[0].Groups)
}

func TestPidstatCPUCoresAndFilters(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		tids     []string
		warnings int
	}{
		{"requested cores", Options{Cores: []string{"3", "7"}}, []string{"200", "101"}, 1},
		{"process list", Options{Processes: []string{"app"}}, []string{"100", "101"}, 0},
		{"where filter", Options{Filter: processFilter("db")}, []string{"200"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := PidstatCPU(shape(t, schema.PidstatCPU, pidstatThreads), tt.opts)
			require.NoError(t, err)
			assert.Len(t, result.Warnings, tt.warnings)
			assert.Equal(t, tt.tids, column(t, findTable(t, result, PidstatCPUTableName), "tid"))
		})
	}
}

func TestPidstatCPUFilterError(t *testing.T) {
	_, err := PidstatCPU(shape(t, schema.PidstatCPU, pidstatThreads), Options{Filter: failingFilter{}})
	assert.Error(t, err)
}

func TestPidstatCPUThread(t *testing.T) {
	result, err := PidstatCPU(shape(t, schema.PidstatCPU, pidstatThreads), Options{Thread: "101"})
	require.NoError(t, err)
	thread := findTable(t, result, "pidstat thread 101")
	assert.Equal(t, "pidstat_thread_101.csv", thread.FileName)
	assert.Equal(t, []string{"10:00:02", "10:00:03"}, column(t, thread, "time"))
	require.Len(t, thread.Charts, 1)
	assert.Equal(t, []string{"%usr", "%system", "%cpu"}, thread.Charts[0].YFields)
	assert.Equal(t, "time", thread.Charts[0].XField)

	result, err = PidstatCPU(shape(t, schema.PidstatCPU, pidstatThreads), Options{Thread: "4242"})
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "thread 4242 not found")
}

func TestPidstatCPUUnresolved(t *testing.T) {
	text := pidstatThreads + "Average:     1000         -       999    1.00    0.00    0.00    0.00    1.00     -  |__ghost\n"
	_, err := PidstatCPU(shape(t, schema.PidstatCPU, text), Options{Source: "pidstat.log"})
	assert.ErrorIs(t, err, affinity.ErrUnresolvedAffinity)
}

func TestPidstatCPUUnknownStatus(t *testing.T) {
	_, err := PidstatCPU(shape(t, schema.PidstatCPU, pidstatThreads), Options{Statuses: []string{"bogus"}})
	assert.Error(t, err)
}

func TestStatusColumns(t *testing.T) {
	ds := table.NewDataset([]string{"time", "%usr", "%sys", "%idle"})
	columns, err := StatusColumns(ds, []string{"usr", "%sys", "USR"})
	require.NoError(t, err)
	assert.Equal(t, []string{"%usr", "%sys"}, columns)
	_, err = StatusColumns(ds, []string{"iowait"})
	assert.ErrorContains(t, err, "usr, sys, idle")
}

func TestMpstat(t *testing.T) {
	ds := shape(t, schema.Mpstat, mpstatOutput)
	result, err := Mpstat(ds, Options{Cores: []string{"0", "CPU1", "7"}, Statuses: []string{"usr", "idle"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"CPU core 7 is invalid"}, result.Warnings)
	assert.Equal(t, 3, result.Stats.Entities)

	cores := findTable(t, result, MpstatCoresTableName)
	assert.Equal(t, []string{"0", "0", "1", "1"}, column(t, cores, "cpu"))
	assert.Equal(t, []string{"0", "1"}, cores.Charts[0].Groups)

	averages := findTable(t, result, MpstatAveragesTableName)
	assert.Equal(t, []string{"all", "0", "1"}, column(t, averages, "cpu"))
	assert.Equal(t, []string{"3", "4", "2"}, column(t, averages, "%usr"))
	assert.Equal(t, []string{"96", "95", "97"}, column(t, averages, "%idle"))
	assert.Equal(t, table.ChartPie, averages.Charts[0].Type)

	all := findTable(t, result, MpstatTableName)
	assert.Equal(t, 9, all.NumRows())
}

func TestMeansOrder(t *testing.T) {
	ds := table.NewDataset([]string{"cpu", "%usr"})
	for _, row := range [][]string{{"10", "1"}, {"2", "2"}, {"all", "3"}, {"2", "3"}, {"10", "x"}} {
		require.NoError(t, ds.Append(row))
	}
	means := Means(ds, "cpu", []string{"%usr"})
	assert.Equal(t, [][]string{{"all", "3"}, {"2", "2.5"}, {"10", "1"}}, means.Rows)
}

func TestVmstat(t *testing.T) {
	text := `procs -----------memory---------- ---swap-- -----io---- -system-- ------cpu-----
 r  b   swpd   free   buff  cache   si   so    bi    bo   in   cs us sy id wa st
 1  0      0   2048   1024   4096    0    0     5    10  100  200  1  1 98  0  0
 2  0    512   1536   1024   4096    0    0     5    10  100  200  1  1 98  0  0
`
	ds := shape(t, schema.Vmstat, text)
	result, err := Vmstat(ds, Options{})
	require.NoError(t, err)
	tv := findTable(t, result, VmstatTableName)
	require.Len(t, tv.Charts, 1)
	assert.Equal(t, []string{"swpd", "free", "buff", "cache"}, tv.Charts[0].YFields)
	assert.Equal(t, []string{"2", "1.5"}, column(t, tv, "free"))

	result, err = Vmstat(ds, Options{VmstatSections: []string{"cpu", "IO"}})
	require.NoError(t, err)
	tv = findTable(t, result, VmstatTableName)
	require.Len(t, tv.Charts, 2)
	assert.Equal(t, "IO", tv.Charts[0].Title)
	assert.Equal(t, "CPU", tv.Charts[1].Title)

	_, err = Vmstat(ds, Options{VmstatSections: []string{"disk"}})
	assert.Error(t, err)
}

func TestProcrank(t *testing.T) {
	text := `10:00:01
  PID       Vss      Rss      Pss      Uss  cmdline
  123     2048K    1024K     512K     256K  /system/bin/app
  456     1024K     512K     256K     128K  surfaceflinger
                           768K     384K  TOTAL
10:00:05
  123     4096K    1024K    1024K     256K  /system/bin/app
`
	result, err := Procrank(shape(t, schema.Procrank, text), Options{Processes: []string{"/system/bin/app", "missing"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"command missing not found"}, result.Warnings)
	tv := findTable(t, result, ProcrankTableName)
	assert.Equal(t, []string{"0.5", "0.25", "1"}, column(t, tv, "pss"))
	assert.Equal(t, []string{"10:00:01", "10:00:01", "10:00:05"}, column(t, tv, "time"))
	assert.Equal(t, "time", tv.Charts[0].XField)
	assert.Equal(t, []string{"/system/bin/app", "missing"}, tv.Charts[0].Groups)
}

func TestFree(t *testing.T) {
	text := `10:00:01
              total        used        free      shared  buff/cache   available
Mem:          16000        8000        4000         100        4000        7168
Swap:          2048           0        2048
10:00:02
              total        used        free      shared  buff/cache   available
Mem:          16000        8000        4000         100        4000        6144
Swap:          2048           0        2048
`
	result, err := Free(shape(t, schema.Free, text), Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	tv := findTable(t, result, FreeTableName)
	assert.Equal(t, []string{"7", "6"}, column(t, tv, "available"))
	assert.Equal(t, []string{"10:00:01", "10:00:02"}, column(t, tv, "time"))
}

func TestTcmalloc(t *testing.T) {
	text := `TCMALLOC_MINI(USER) a b 2048K c d e f g 7 thread_one 1 x y
noise line
TCMALLOC_MINI(USER) a b 1024K c d e f g 8 thread_one 2 x y
TCMALLOC_MINI(USER) a b 4096K c d e f g 7 thread_one 3 x y
`
	result, err := Tcmalloc(shape(t, schema.Tcmalloc, text), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Entities)
	tv := findTable(t, result, TcmallocTableName)
	assert.Equal(t, []string{"2", "1", "4"}, column(t, tv, "mem"))
	assert.Equal(t, []string{"7", "8"}, tv.Charts[0].Groups)
}

func TestHogs(t *testing.T) {
	text := `PID NAME MSEC PIDS SYS MEMORY
1 procnto 1022 50% 50% 2048k 1%
4 mfrlaunch 300 10% 12.5% 512K 0.5%
1 procnto 1022 50% 40% 2048k 1%
`
	ds := shape(t, schema.Hogs, text)
	result, err := Hogs(ds, Options{Thread: "1"})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	tv := findTable(t, result, HogsTableName)
	assert.Equal(t, []string{"50", "40"}, column(t, tv, "sys"))

	result, err = Hogs(ds, Options{Thread: "99"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pid 99 not found"}, result.Warnings)
}

func TestProcess(t *testing.T) {
	ds := shape(t, schema.Mpstat, mpstatOutput)
	result, err := Process(schema.Mpstat, ds, Options{})
	require.NoError(t, err)
	assert.Equal(t, schema.Mpstat, result.LogType)

	_, err = Process("sar", ds, Options{})
	assert.ErrorIs(t, err, schema.ErrUnknownVariant)
}
