// Package vmstat is a subcommand of the root command. It processes vmstat logs.
package vmstat

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"slices"
	"strings"

	"sclean/internal/app"
	"sclean/internal/common"
	"sclean/internal/extract"
	"sclean/internal/schema"
	"sclean/internal/workflow"

	"github.com/spf13/cobra"
)

const cmdName = "vmstat"

var examples = []string{
	fmt.Sprintf("  Chart memory usage:          $ %s %s --input vmstat.log", app.Name, cmdName),
	fmt.Sprintf("  Chart memory, IO and CPU:    $ %s %s --input vmstat.log --sections memory,io,cpu", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process vmstat logs",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagSections []string

const flagSectionsName = "sections"

func init() {
	common.AddInputFlags(Cmd, "")
	Cmd.Flags().StringSliceVar(&flagSections, flagSectionsName, []string{"memory"}, "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	return []app.FlagGroup{
		common.GetInputFlagGroup("path of the vmstat log, may be gzip or zstd compressed"),
		{
			GroupName: "Processing Options",
			Flags: []app.Flag{
				{Name: flagSectionsName, Help: fmt.Sprintf("sections to chart, choose from: %s", strings.Join(extract.VmstatSectionNames(), ", "))},
			},
		},
	}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateInputFlags(cmd); err != nil {
		return err
	}
	for _, section := range flagSections {
		if !slices.Contains(extract.VmstatSectionNames(), strings.ToLower(section)) {
			return app.FlagValidationError(cmd, fmt.Sprintf("section options are: %s", strings.Join(extract.VmstatSectionNames(), ", ")))
		}
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	pc := workflow.ProcessingCommand{
		Cmd: cmd,
		Jobs: []workflow.Job{{
			LogType: schema.Vmstat,
			Path:    app.FlagInput,
			Options: extract.Options{VmstatSections: flagSections},
		}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
