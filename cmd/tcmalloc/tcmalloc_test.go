package tcmalloc

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelp(t *testing.T) {
	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	defer Cmd.SetOut(nil)
	require.NoError(t, Cmd.Help())
	assert.Contains(t, buf.String(), "the first matching line is kept as a data row")
}
