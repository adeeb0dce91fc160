package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sclean/internal/schema"
)

func TestParseCores(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []string
		wantErr bool
	}{
		{"single", []string{"3"}, []string{"3"}, false},
		{"list and range", []string{"0-2,7"}, []string{"0", "1", "2", "7"}, false},
		{"caller order kept", []string{"7", "0"}, []string{"7", "0"}, false},
		{"duplicates removed", []string{"1", "0-2"}, []string{"1", "0", "2"}, false},
		{"invalid", []string{"cpu1"}, nil, true},
		{"reversed range", []string{"3-1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCores(tt.specs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPidstatLogType(t *testing.T) {
	logType, err := PidstatLogType("MEM")
	require.NoError(t, err)
	assert.Equal(t, schema.PidstatMem, logType)
	_, err = PidstatLogType("net")
	assert.ErrorContains(t, err, "cpu, mem, io")
}

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetJobsFromFile(t *testing.T) {
	path := writeJobFile(t, `
hogs:
  path: logs/hogs.log
  thread: 4242
vmstat:
  path: logs/vmstat.log
  sections: [memory, cpu]
pidstat:
  path: logs/pidstat.log
  cores: "0-1,3"
  processes: [app]
  where: "[%cpu] > 5"
mpstat:
  path: logs/mpstat.log
  statuses: [usr, idle]
`)
	jobs, err := GetJobsFromFile(path)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	var logTypes []string
	for _, job := range jobs {
		logTypes = append(logTypes, job.LogType)
	}
	assert.Equal(t, []string{schema.PidstatCPU, schema.Mpstat, schema.Vmstat, schema.Hogs}, logTypes)

	assert.Equal(t, "logs/pidstat.log", jobs[0].Path)
	assert.Equal(t, []string{"0", "1", "3"}, jobs[0].Options.Cores)
	assert.Equal(t, []string{"app"}, jobs[0].Options.Processes)
	assert.Equal(t, "[%cpu] > 5", jobs[0].Where)
	assert.Equal(t, []string{"usr", "idle"}, jobs[1].Options.Statuses)
	assert.Equal(t, []string{"memory", "cpu"}, jobs[2].Options.VmstatSections)
	assert.Equal(t, "4242", jobs[3].Options.Thread)
}

func TestGetJobsFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "", "no jobs found"},
		{"missing path", "free: {}\n", "path is required"},
		{"unknown view", "pidstat:\n  path: p.log\n  view: net\n", "pidstat view options"},
		{"where on mem view", "pidstat:\n  path: p.log\n  view: mem\n  where: \"rss > 1\"\n", "cpu view only"},
		{"bad cores", "mpstat:\n  path: m.log\n  cores: all\n", "invalid core list"},
		{"unknown key", "sar:\n  path: s.log\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetJobsFromFile(writeJobFile(t, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetJobsFromFileMissing(t *testing.T) {
	_, err := GetJobsFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
