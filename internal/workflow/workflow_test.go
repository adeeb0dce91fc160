package workflow

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sclean/internal/app"
	"sclean/internal/normalize"
	"sclean/internal/promfile"
	"sclean/internal/schema"
)

const pidstatLog = `Linux 5.15.0-91-generic (host) 	01/15/2024 	_x86_64_	(8 CPU)

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

const vmstatLog = `procs -----------memory---------- ---swap-- -----io---- -system-- ------cpu-----
 r  b   swpd   free   buff  cache   si   so    bi    bo   in   cs us sy id wa st
 1  0      0   2048   1024   4096    0    0     5    10  100  200  1  1 98  0  0
 2  0    512   1536   1024   4096    0    0     5    10  100  200  1  1 98  0  0
`

func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func noStatus(string, string) error { return nil }

func TestProcessLogPidstat(t *testing.T) {
	outputDir := t.TempDir()
	job := Job{LogType: schema.PidstatCPU, Path: writeLog(t, "pidstat.log", pidstatLog)}
	outcome, err := ProcessLog(job, outputDir, []string{"txt", "json"}, nil, noStatus)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "pidstat.csv"), outcome.Artifact)
	assert.Equal(t, []string{
		filepath.Join(outputDir, "pidstat_cpu.csv"),
		filepath.Join(outputDir, "pidstat_cpu_totals.csv"),
		filepath.Join(outputDir, "pidstat-cpu.txt"),
		filepath.Join(outputDir, "pidstat-cpu.json"),
	}, outcome.Files)
	for _, file := range append(outcome.Files, outcome.Artifact) {
		assert.FileExists(t, file)
	}
	// header plus threads 100, 200 and 101
	assert.Len(t, readCSV(t, filepath.Join(outputDir, "pidstat_cpu.csv")), 4)

	// the artifact normalizes to the same rows as the source
	fromSource, err := normalize.Normalize(job.Path, normalize.Options{})
	require.NoError(t, err)
	fromArtifact, err := normalize.Normalize(outcome.Artifact, normalize.Options{})
	require.NoError(t, err)
	assert.Equal(t, fromSource, fromArtifact)
}

func TestProcessLogWhere(t *testing.T) {
	outputDir := t.TempDir()
	job := Job{LogType: schema.PidstatCPU, Path: writeLog(t, "pidstat.log", pidstatLog), Where: "[%cpu] > 4"}
	_, err := ProcessLog(job, outputDir, nil, nil, noStatus)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, filepath.Join(outputDir, "pidstat_cpu.csv")), 2)

	job.Where = "[%cpu] > 4 && name == 'db'"
	_, err = ProcessLog(job, outputDir, nil, nil, noStatus)
	assert.ErrorContains(t, err, "unknown column name")

	job.Where = "[%cpu] >"
	_, err = ProcessLog(job, outputDir, nil, nil, noStatus)
	assert.Error(t, err)
}

func TestProcessLogMissingInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpstat.log")
	_, err := ProcessLog(Job{LogType: schema.Mpstat, Path: path}, t.TempDir(), nil, nil, noStatus)
	require.ErrorIs(t, err, normalize.ErrMissingInput)
	assert.Equal(t, path+" does not exist", err.Error())
}

func TestProcessLogUnknownType(t *testing.T) {
	_, err := ProcessLog(Job{LogType: "sar", Path: writeLog(t, "sar.log", vmstatLog)}, t.TempDir(), nil, nil, noStatus)
	assert.ErrorIs(t, err, schema.ErrUnknownVariant)
}

func TestProcessLogMetrics(t *testing.T) {
	outputDir := t.TempDir()
	collector := promfile.New()
	outcome, err := ProcessLog(Job{LogType: schema.Vmstat, Path: writeLog(t, "vmstat.log", vmstatLog)}, outputDir, nil, collector, noStatus)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(outputDir, "vmstat_data.csv")}, outcome.Files)

	metricsFile := filepath.Join(outputDir, "sclean.prom")
	require.NoError(t, collector.WriteTextfile(metricsFile))
	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `sclean_rows_kept{log_type="vmstat"} 2`)
}

func newTestCommand(outputDir string) *cobra.Command {
	root := &cobra.Command{Use: app.Name}
	cmd := &cobra.Command{Use: "vmstat"}
	root.AddCommand(cmd)
	root.SetContext(context.WithValue(context.Background(), app.Context{}, app.Context{OutputDir: outputDir}))
	return cmd
}

func TestRun(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "out")
	pc := ProcessingCommand{
		Cmd:         newTestCommand(outputDir),
		Jobs:        []Job{{LogType: schema.Vmstat, Path: writeLog(t, "vmstat.log", vmstatLog)}},
		Formats:     []string{"html"},
		MetricsFile: filepath.Join(t.TempDir(), "sclean.prom"),
	}
	require.NoError(t, pc.Run())
	assert.FileExists(t, filepath.Join(outputDir, "vmstat.csv"))
	assert.FileExists(t, filepath.Join(outputDir, "vmstat.html"))
	assert.FileExists(t, pc.MetricsFile)
}

func TestRunHaltsOnError(t *testing.T) {
	outputDir := t.TempDir()
	pc := ProcessingCommand{
		Cmd: newTestCommand(outputDir),
		Jobs: []Job{
			{LogType: schema.Mpstat, Path: filepath.Join(outputDir, "missing.log")},
			{LogType: schema.Vmstat, Path: writeLog(t, "vmstat.log", vmstatLog)},
		},
	}
	err := pc.Run()
	require.ErrorIs(t, err, normalize.ErrMissingInput)
	assert.True(t, pc.Cmd.SilenceUsage)
	assert.NoFileExists(t, filepath.Join(outputDir, "vmstat.csv"))
}

func TestRunBadFormat(t *testing.T) {
	pc := ProcessingCommand{
		Cmd:     newTestCommand(t.TempDir()),
		Jobs:    []Job{{LogType: schema.Vmstat, Path: writeLog(t, "vmstat.log", vmstatLog)}},
		Formats: []string{"pdf"},
	}
	assert.Error(t, pc.Run())
}
