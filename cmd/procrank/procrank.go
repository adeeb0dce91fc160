// Package procrank is a subcommand of the root command. It processes procrank logs.
package procrank

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sclean/internal/app"
	"sclean/internal/common"
	"sclean/internal/extract"
	"sclean/internal/schema"
	"sclean/internal/workflow"

	"github.com/spf13/cobra"
)

const cmdName = "procrank"

var examples = []string{
	fmt.Sprintf("  Chart PSS of every process:     $ %s %s --input procrank.log", app.Name, cmdName),
	fmt.Sprintf("  Chart two processes:            $ %s %s --input procrank.log --processes surfaceflinger,/system/bin/app", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process procrank memory logs",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagProcesses []string

const flagProcessesName = "processes"

func init() {
	common.AddInputFlags(Cmd, "")
	Cmd.Flags().StringSliceVar(&flagProcesses, flagProcessesName, []string{}, "")
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	return []app.FlagGroup{
		common.GetInputFlagGroup("path of the procrank log, may be gzip or zstd compressed"),
		{
			GroupName: "Processing Options",
			Flags: []app.Flag{
				{Name: flagProcessesName, Help: "only chart these processes (cmdline)"},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	return common.ValidateInputFlags(cmd)
}

func runCmd(cmd *cobra.Command, args []string) error {
	pc := workflow.ProcessingCommand{
		Cmd: cmd,
		Jobs: []workflow.Job{{
			LogType: schema.Procrank,
			Path:    app.FlagInput,
			Options: extract.Options{Processes: flagProcesses},
		}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
