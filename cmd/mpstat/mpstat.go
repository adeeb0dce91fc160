// Package mpstat is a subcommand of the root command. It processes mpstat logs.
package mpstat

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

const cmdName = "mpstat"

var examples = []string{
	fmt.Sprintf("  Chart core 0 utilization:      $ %s %s --input mpstat.log", app.Name, cmdName),
	fmt.Sprintf("  Chart cores 0 to 3 as html:    $ %s %s --input mpstat.log --cores 0-3 --format html", app.Name, cmdName),
	fmt.Sprintf("  Only user and idle time:       $ %s %s --input mpstat.log --status usr,idle", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process mpstat per-core CPU utilization logs",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagCores    []string
	flagStatuses []string
)

const (
	flagCoresName    = "cores"
	flagStatusesName = "status"
)

func init() {
	common.AddInputFlags(Cmd, "")
	Cmd.Flags().StringSliceVar(&flagCores, flagCoresName, []string{"0"}, "")
	Cmd.Flags().StringSliceVar(&flagStatuses, flagStatusesName, extract.DefaultMpstatStatuses, "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	return []app.FlagGroup{
		common.GetInputFlagGroup("path of the mpstat log, may be gzip or zstd compressed"),
		{
			GroupName: "Processing Options",
			Flags: []app.Flag{
				{Name: flagCoresName, Help: "CPU cores to chart, e.g., 0-3,7"},
				{Name: flagStatusesName, Help: "status columns to chart, e.g., usr sys iowait idle"},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateInputFlags(cmd); err != nil {
		return err
	}
	cores, err := common.ParseCores(flagCores)
	if err != nil {
		return app.FlagValidationError(cmd, err.Error())
	}
	if len(cores) == 0 {
		return app.FlagValidationError(cmd, fmt.Sprintf("--%s requires at least one core", flagCoresName))
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	cores, _ := common.ParseCores(flagCores)
	pc := workflow.ProcessingCommand{
		Cmd: cmd,
		Jobs: []workflow.Job{{
			LogType: schema.Mpstat,
			Path:    app.FlagInput,
			Options: extract.Options{
				Cores:    cores,
				Statuses: flagStatuses,
			},
		}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
