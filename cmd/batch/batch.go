// Package batch is a subcommand of the root command. It processes every log listed in a job file.
package batch

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strings"

	"sclean/internal/app"
	"sclean/internal/common"
	"sclean/internal/workflow"

	"github.com/spf13/cobra"
)

const cmdName = "batch"

var examples = []string{
	fmt.Sprintf("  Process the logs in job.yaml:   $ %s %s --job job.yaml", app.Name, cmdName),
	fmt.Sprintf("  Also write html reports:        $ %s %s --job job.yaml --format html", app.Name, cmdName),
}

const jobFileExample = `
Job file format (every section is optional, logs are processed in this order):
  pidstat:
    path: pidstat.log
    view: cpu            # cpu, mem or io
    cores: "0-3"
    thread: 1234
    statuses: [usr, system, cpu]
    processes: [app]
    where: "[%cpu] > 5"
  mpstat:   {path: mpstat.log, cores: "0,1", statuses: [usr, idle]}
  vmstat:   {path: vmstat.log, sections: [memory, cpu]}
  tcmalloc: {path: tcmalloc.log}
  procrank: {path: procrank.log, processes: [surfaceflinger]}
  free:     {path: free.log}
  hogs:     {path: hogs.log, thread: 4242}`

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process the logs listed in a job file",
	Long:          "Processes each log listed in a YAML job file. Processing stops at the first error." + jobFileExample,
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "other",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var flagJobFile string

const flagJobFileName = "job"

func init() {
	Cmd.Flags().StringVar(&flagJobFile, flagJobFileName, "", "")
	Cmd.Flags().StringSliceVar(&app.FlagFormat, app.FlagFormatName, []string{}, "")
	Cmd.Flags().StringVar(&app.FlagMetricsFile, app.FlagMetricsFileName, "", "")
	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	group := common.GetInputFlagGroup("")
	// the job file replaces --input
	group.Flags[0] = app.Flag{Name: flagJobFileName, Help: "YAML file listing the logs to process, see --help for the format"}
	return []app.FlagGroup{group}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagJobFile == "" {
		return app.FlagValidationError(cmd, fmt.Sprintf("--%s is required", flagJobFileName))
	}
	return common.ValidateInputFlags(cmd)
}

func runCmd(cmd *cobra.Command, args []string) error {
	jobs, err := common.GetJobsFromFile(flagJobFile)
	if err != nil {
		slog.Error(err.Error())
		return app.FlagValidationError(cmd, err.Error())
	}
	slog.Info("loaded job file", slog.String("path", flagJobFile), slog.Int("jobs", len(jobs)))
	pc := workflow.ProcessingCommand{
		Cmd:         cmd,
		Jobs:        jobs,
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
