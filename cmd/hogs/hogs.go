// Package hogs is a subcommand of the root command. It processes QNX hogs logs.
package hogs

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sclean/internal/app"
	"sclean/internal/common"
	"sclean/internal/extract"
	"sclean/internal/schema"
	"sclean/internal/util"
	"sclean/internal/workflow"

	"github.com/spf13/cobra"
)

const cmdName = "hogs"

var examples = []string{
	fmt.Sprintf("  Chart CPU usage of all hogs:   $ %s %s --input hogs.log", app.Name, cmdName),
	fmt.Sprintf("  Chart one process:             $ %s %s --input hogs.log --thread 4242", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process QNX hogs logs",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagThread string

const flagThreadName = "thread"

func init() {
	common.AddInputFlags(Cmd, "")
	Cmd.Flags().StringVar(&flagThread, flagThreadName, "", "")
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	return []app.FlagGroup{
		common.GetInputFlagGroup("path of the hogs log, may be gzip or zstd compressed"),
		{
			GroupName: "Processing Options",
			Flags: []app.Flag{
				{Name: flagThreadName, Help: "only chart this pid"},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateInputFlags(cmd); err != nil {
		return err
	}
	if flagThread != "" && !util.IsDigits(flagThread) {
		return app.FlagValidationError(cmd, fmt.Sprintf("--%s must be a pid, got %s", flagThreadName, flagThread))
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	pc := workflow.ProcessingCommand{
		Cmd: cmd,
		Jobs: []workflow.Job{{
			LogType: schema.Hogs,
			Path:    app.FlagInput,
			Options: extract.Options{Thread: flagThread},
		}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
