package progress

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMultiSpinner(t *testing.T) {
	spinner := NewMultiSpinner()
	if spinner == nil {
		t.Fatal("failed to create a spinner")
	}
}

func TestMultiSpinner(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewMultiSpinnerWriter(&buf, false)
	require.NoError(t, spinner.AddSpinner("pidstat.log"))
	require.NoError(t, spinner.AddSpinner("mpstat.log"))
	assert.Error(t, spinner.AddSpinner("pidstat.log"), "added spinner with same label")
	spinner.Start()

	assert.NoError(t, spinner.Status("pidstat.log", "shaping"))
	assert.NoError(t, spinner.Status("mpstat.log", "done"))
	assert.Error(t, spinner.Status("vmstat.log", "done"), "updated status of non-existent spinner")
	spinner.Finish()

	out := buf.String()
	assert.Contains(t, out, "shaping")
	assert.Contains(t, out, "done")
	assert.NotContains(t, out, "\x1b[1A")
	// unchanged statuses are not repeated
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestFinishWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewMultiSpinnerWriter(&buf, true)
	require.NoError(t, spinner.AddSpinner("free.log"))
	spinner.Finish()
	assert.Empty(t, buf.String())
}
