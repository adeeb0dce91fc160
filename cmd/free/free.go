// Package free is a subcommand of the root command. It processes logs of the free utility.
package free

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

const cmdName = "free"

var examples = []string{
	fmt.Sprintf("  Chart available memory:   $ %s %s --input free.log", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process free memory logs",
	Long:          "",
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
	return []app.FlagGroup{common.GetInputFlagGroup("path of the free log, may be gzip or zstd compressed")}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	return common.ValidateInputFlags(cmd)
}

func runCmd(cmd *cobra.Command, args []string) error {
	pc := workflow.ProcessingCommand{
		Cmd:         cmd,
		Jobs:        []workflow.Job{{LogType: schema.Free, Path: app.FlagInput}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
