package propagate

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sclean/internal/table"
)

func newDataset(t *testing.T, columns []string, rows ...[]string) *table.Dataset {
	t.Helper()
	ds := table.NewDataset(columns)
	for _, row := range rows {
		require.NoError(t, ds.Append(row))
	}
	return ds
}

func TestIsTimestamp(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"10:00:01", true},
		{"Average:", false},
		{"Mem:", false},
		{"", false},
		{"1234", false},
		{"1:2", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsTimestamp(tt.value), tt.value)
	}
}

func TestTime(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		added    bool
		expected []string
	}{
		{
			name:     "carried forward",
			values:   []string{"10:00:01", "", "", "10:00:05", ""},
			added:    true,
			expected: []string{"10:00:01", "10:00:01", "10:00:01", "10:00:05", "10:00:05"},
		},
		{
			name:     "records before the first timestamp",
			values:   []string{"Mem:", "Swap:", "10:00:01", "Mem:"},
			added:    true,
			expected: []string{"", "", "10:00:01", "10:00:01"},
		},
		{
			name:   "no timestamps",
			values: []string{"Mem:", "Swap:", "Average:"},
			added:  false,
		},
		{
			name:   "empty dataset",
			values: []string{},
			added:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := table.NewDataset([]string{"type"})
			for _, v := range tt.values {
				require.NoError(t, ds.Append([]string{v}))
			}
			added, err := Time(ds, "type")
			require.NoError(t, err)
			assert.Equal(t, tt.added, added)
			if !tt.added {
				assert.False(t, ds.HasColumn(TimeColumn))
				return
			}
			times, err := ds.Column(TimeColumn)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, times)
		})
	}
}

func TestTimeIsLocalToCall(t *testing.T) {
	first := newDataset(t, []string{"pid"}, []string{"10:00:01"}, []string{"1"})
	second := newDataset(t, []string{"pid"}, []string{"2"}, []string{"10:00:09"})
	added, err := Time(first, "pid")
	require.NoError(t, err)
	require.True(t, added)
	added, err = Time(second, "pid")
	require.NoError(t, err)
	require.True(t, added)
	times, err := second.Column(TimeColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "10:00:09"}, times)
}

func TestTimeErrors(t *testing.T) {
	// a dataset that already has a time column is left alone
	ds := newDataset(t, []string{"time", "pid"}, []string{"10:00:01", "1"})
	added, err := Time(ds, "pid")
	assert.Error(t, err)
	assert.False(t, added)
	assert.Equal(t, []string{"time", "pid"}, ds.Columns)

	_, err = Time(newDataset(t, []string{"pid"}, []string{"1"}), "type")
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	ds := newDataset(t, []string{"tgid", "tid", "command"},
		[]string{"-", "50", "|__orphan"},
		[]string{"100", "-", "app"},
		[]string{"-", "100", "|__app"},
		[]string{"-", "101", "|__worker"},
		[]string{"200", "-", "db"},
		[]string{"-", "201", "|__io"},
	)
	require.NoError(t, Process(ds, "tgid", "command"))
	names, err := ds.Column(ProcessColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "app", "app", "app", "db", "db"}, names)

	kinds, err := Kinds(ds, "tgid")
	require.NoError(t, err)
	assert.Equal(t, []string{KindThread, KindProcess, KindThread, KindThread, KindProcess, KindThread}, kinds)
}

func TestProcessErrors(t *testing.T) {
	ds := newDataset(t, []string{"tgid", "command"}, []string{"1", "a"})
	assert.Error(t, Process(ds, "missing", "command"))
	assert.Error(t, Process(ds, "tgid", "missing"))
	require.NoError(t, Process(ds, "tgid", "command"))
	assert.Error(t, Process(ds, "tgid", "command"))
}
