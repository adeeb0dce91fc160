package normalize

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pidstatOutput = `Linux 5.15.0-91-generic (host) 	01/15/2024 	_x86_64_	(8 CPU)

10:00:01      TGID       TID    %usr %system  %guest   %wait    %CPU   CPU  Command
10:00:02       100         -    1.00    0.00    0.00    0.00    1.00     0  app
10:00:02         -       100    1.00    0.00    0.00    0.00    1.00     0  |__app

Average:      TGID       TID    %usr %system  %guest   %wait    %CPU   CPU  Command
`

func TestNormalizeReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected [][]string
	}{
		{
			name:  "banner and blank lines dropped",
			input: pidstatOutput,
			expected: [][]string{
				{"10:00:01", "TGID", "TID", "%usr", "%system", "%guest", "%wait", "%CPU", "CPU", "Command"},
				{"10:00:02", "100", "-", "1.00", "0.00", "0.00", "0.00", "1.00", "0", "app"},
				{"10:00:02", "-", "100", "1.00", "0.00", "0.00", "0.00", "1.00", "0", "|__app"},
				{"Average:", "TGID", "TID", "%usr", "%system", "%guest", "%wait", "%CPU", "CPU", "Command"},
			},
		},
		{
			name:  "include filter",
			input: "TCMALLOC_MINI(USER) a b 12K c d e f g 7 thread_one 1\nother line\nTCMALLOC_MINI(USER) x thread_two 2\n",
			opts:  Options{Include: regexp.MustCompile(`^TCMALLOC_MINI\(USER\).*thread_one \d`)},
			expected: [][]string{
				{"TCMALLOC_MINI(USER)", "a", "b", "12K", "c", "d", "e", "f", "g", "7", "thread_one", "1"},
			},
		},
		{
			name:  "custom banner",
			input: "QNX hogs\n1 a 2\n",
			opts:  Options{Banner: regexp.MustCompile(`^QNX`)},
			expected: [][]string{
				{"1", "a", "2"},
			},
		},
		{
			name:     "invalid utf-8 line dropped",
			input:    "a b\n\xff\xfe c\nd e\n",
			expected: [][]string{{"a", "b"}, {"d", "e"}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := NormalizeReader(strings.NewReader(tt.input), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first, err := NormalizeReader(strings.NewReader(pidstatOutput), Options{})
	require.NoError(t, err)

	var joined []string
	for _, row := range first {
		joined = append(joined, strings.Join(row, " "))
	}
	second, err := NormalizeReader(strings.NewReader(strings.Join(joined, "\n")), Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestArtifactReadBack(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pidstat.log")
	require.NoError(t, os.WriteFile(src, []byte(pidstatOutput), 0o644))

	rows, err := Normalize(src, Options{})
	require.NoError(t, err)

	artifact := filepath.Join(dir, "pidstat.csv")
	require.NoError(t, WriteArtifact(artifact, rows))

	again, err := Normalize(artifact, Options{})
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{{"pid", "vss"}, {"123", "2048K", "/system/bin/app"}}
	artifact := filepath.Join(dir, "procrank.csv")
	require.NoError(t, os.WriteFile(artifact, []byte("stale\n"), 0600))
	require.NoError(t, WriteArtifact(artifact, rows))
	content, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "pid,vss\n123,2048K,/system/bin/app\n", string(content))

	err = WriteArtifact(filepath.Join(dir, "missing", "procrank.csv"), rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create")
}

func TestNormalizeCompressed(t *testing.T) {
	dir := t.TempDir()
	want, err := NormalizeReader(strings.NewReader(pidstatOutput), Options{})
	require.NoError(t, err)

	gzPath := filepath.Join(dir, "pidstat.log.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(pidstatOutput))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	rows, err := Normalize(gzPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, want, rows)

	zstPath := filepath.Join(dir, "pidstat.log.zst")
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte(pidstatOutput), nil)
	require.NoError(t, enc.Close())
	require.NoError(t, os.WriteFile(zstPath, compressed, 0o644))

	rows, err = Normalize(zstPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, want, rows)
}

func TestNormalizeMissingInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")
	_, err := Normalize(path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInput))
	assert.Equal(t, path+" does not exist", err.Error())
}
