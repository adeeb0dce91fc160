// Package tcmalloc is a subcommand of the root command. It processes tcmalloc mini logs.
package tcmalloc

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sclean/internal/app"
	"sclean/internal/common"
	"sclean/internal/schema"
	"sclean/internal/workflow"

	"github.com/spf13/cobra"
)

const cmdName = "tcmalloc"

var examples = []string{
	fmt.Sprintf("  Chart allocator memory per thread:   $ %s %s --input tcmalloc.log", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process tcmalloc mini logs",
	Long: `Process tcmalloc mini logs.

Only TCMALLOC_MINI(USER) thread_one lines are read from the log. The log has no header
line, so the first matching line is kept as a data row like every other matching line.`,
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

func init() {
	common.AddInputFlags(Cmd, "")
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	return []app.FlagGroup{common.GetInputFlagGroup("path of the tcmalloc log, may be gzip or zstd compressed")}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	return common.ValidateInputFlags(cmd)
}

func runCmd(cmd *cobra.Command, args []string) error {
	pc := workflow.ProcessingCommand{
		Cmd:         cmd,
		Jobs:        []workflow.Job{{LogType: schema.Tcmalloc, Path: app.FlagInput}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
