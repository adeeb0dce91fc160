// Package common includes flags, flag groups and usage helpers shared by the log
// processing commands, and the batch job file loader.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"
	"strings"

	"sclean/internal/app"
	"sclean/internal/report"
	"sclean/internal/schema"
	"sclean/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// pidstat views and the log types they select
var pidstatViews = map[string]string{
	"cpu": schema.PidstatCPU,
	"mem": schema.PidstatMem,
	"io":  schema.PidstatIO,
}

// PidstatViewNames lists the pidstat views in help text order
var PidstatViewNames = []string{"cpu", "mem", "io"}

// PidstatLogType maps a pidstat view name to its log type
func PidstatLogType(view string) (string, error) {
	logType, ok := pidstatViews[strings.ToLower(view)]
	if !ok {
		return "", fmt.Errorf("pidstat view options are: %s", strings.Join(PidstatViewNames, ", "))
	}
	return logType, nil
}

// AddInputFlags adds the flags every log processing command shares
func AddInputFlags(cmd *cobra.Command, defaultInput string) {
	cmd.Flags().StringVar(&app.FlagInput, app.FlagInputName, defaultInput, "")
	cmd.Flags().StringSliceVar(&app.FlagFormat, app.FlagFormatName, []string{}, "")
	cmd.Flags().StringVar(&app.FlagMetricsFile, app.FlagMetricsFileName, "", "")
}

// GetInputFlagGroup returns the help for the flags added by AddInputFlags
func GetInputFlagGroup(inputHelp string) app.FlagGroup {
	return app.FlagGroup{
		GroupName: "Input and Output Options",
		Flags: []app.Flag{
			{Name: app.FlagInputName, Help: inputHelp},
			{Name: app.FlagFormatName, Help: fmt.Sprintf("report format(s) written in addition to csv, choose from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", "))},
			{Name: app.FlagMetricsFileName, Help: "write processing statistics to this file in Prometheus text format"},
		},
	}
}

// ValidateInputFlags checks the flags added by AddInputFlags
func ValidateInputFlags(cmd *cobra.Command) error {
	if cmd.Flags().Lookup(app.FlagInputName) != nil && app.FlagInput == "" {
		return app.FlagValidationError(cmd, fmt.Sprintf("--%s is required", app.FlagInputName))
	}
	if _, err := report.Formats(app.FlagFormat); err != nil {
		return app.FlagValidationError(cmd, err.Error())
	}
	if app.FlagMetricsFile != "" {
		exists, err := util.DirectoryExists(app.FlagMetricsFile)
		if err == nil && exists {
			return app.FlagValidationError(cmd, fmt.Sprintf("--%s must name a file, %s is a directory", app.FlagMetricsFileName, app.FlagMetricsFile))
		}
	}
	return nil
}

// ParseCores expands core lists such as "0-3,7" into core numbers, in order, without duplicates
func ParseCores(specs []string) ([]string, error) {
	var cores []string
	for _, spec := range specs {
		ints, err := util.ParseIntList(strings.TrimSpace(spec))
		if err != nil {
			return nil, fmt.Errorf("invalid core list %q: %w", spec, err)
		}
		for _, core := range ints {
			cores = util.UniqueAppend(cores, strconv.Itoa(core))
		}
	}
	return cores, nil
}

// UsageFunc returns a cobra usage function that prints the flags in groups
func UsageFunc(getFlagGroups func() []app.FlagGroup) func(*cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
		if cmd.Example != "" {
			cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		}
		cmd.Println("Flags:")
		for _, group := range getFlagGroups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				flagDefault := ""
				if cmd.Flags().Lookup(flag.Name).DefValue != "" && cmd.Flags().Lookup(flag.Name).DefValue != "[]" {
					flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
				}
				cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
			}
		}
		if cmd.Parent() != nil {
			cmd.Println("\nGlobal Flags:")
			cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
				flagDefault := ""
				if pf.DefValue != "" {
					flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
				}
				cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
			})
		}
		return nil
	}
}
