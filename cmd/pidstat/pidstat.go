// Package pidstat is a subcommand of the root command. It processes pidstat logs.
package pidstat

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"sclean/internal/app"
	"sclean/internal/common"
	"sclean/internal/expr"
	"sclean/internal/extract"
	"sclean/internal/schema"
	"sclean/internal/util"
	"sclean/internal/workflow"

	"github.com/spf13/cobra"
)

const cmdName = "pidstat"

var examples = []string{
	fmt.Sprintf("  Partition threads by core affinity:   $ %s %s --input pidstat.log", app.Name, cmdName),
	fmt.Sprintf("  Only cores 0 to 3, app threads:       $ %s %s --input pidstat.log --cores 0-3 --processes app", app.Name, cmdName),
	fmt.Sprintf("  Follow one thread:                    $ %s %s --input pidstat.log --thread 1234 --format html", app.Name, cmdName),
	fmt.Sprintf("  Busy threads only:                    $ %s %s --input pidstat.log --where \"[%%cpu] > 5\"", app.Name, cmdName),
	fmt.Sprintf("  Memory view:                          $ %s %s --input pidstat_r.log --view mem", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Process pidstat logs (cpu, memory and IO views)",
	Long: `Process pidstat logs (cpu, memory and IO views).

The cpu view reads pidstat -u -t output and groups the threads by the cores they ran on:
one bucket per core for threads pinned to a single core, then an Other/Unbound bucket for
threads seen on several cores. Without --cores every core that has pinned threads gets a
bucket; pass --cores 0 to report core 0 only.`,
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagView      string
	flagCores     []string
	flagThread    string
	flagStatuses  []string
	flagProcesses []string
	flagWhere     string
)

const (
	flagViewName      = "view"
	flagCoresName     = "cores"
	flagThreadName    = "thread"
	flagStatusesName  = "status"
	flagProcessesName = "processes"
	flagWhereName     = "where"
)

func init() {
	common.AddInputFlags(Cmd, "")
	Cmd.Flags().StringVar(&flagView, flagViewName, "cpu", "")
	Cmd.Flags().StringSliceVar(&flagCores, flagCoresName, []string{}, "")
	Cmd.Flags().StringVar(&flagThread, flagThreadName, "", "")
	Cmd.Flags().StringSliceVar(&flagStatuses, flagStatusesName, extract.DefaultPidstatStatuses, "")
	Cmd.Flags().StringSliceVar(&flagProcesses, flagProcessesName, []string{}, "")
	Cmd.Flags().StringVar(&flagWhere, flagWhereName, "", "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []app.FlagGroup {
	var groups []app.FlagGroup
	groups = append(groups, common.GetInputFlagGroup("path of the pidstat log, may be gzip or zstd compressed"))
	groups = append(groups, app.FlagGroup{
		GroupName: "Processing Options",
		Flags: []app.Flag{
			{Name: flagViewName, Help: fmt.Sprintf("pidstat view in the log, choose from: %s", strings.Join(common.PidstatViewNames, ", "))},
			{Name: flagCoresName, Help: "CPU cores to report threads for, e.g., 0-3,7. Default is every core with pinned threads, not only core 0. cpu view only"},
			{Name: flagThreadName, Help: "thread id to chart over time. cpu view only"},
			{Name: flagStatusesName, Help: "status columns to chart, e.g., usr system. cpu view only"},
			{Name: flagProcessesName, Help: "only report these processes (commands)"},
			{Name: flagWhereName, Help: "only report threads matching this expression, e.g., \"[%cpu] > 5 && process == 'app'\". cpu view only"},
		},
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := common.ValidateInputFlags(cmd); err != nil {
		return err
	}
	logType, err := common.PidstatLogType(flagView)
	if err != nil {
		return app.FlagValidationError(cmd, err.Error())
	}
	if logType != schema.PidstatCPU {
		for _, name := range []string{flagCoresName, flagThreadName, flagStatusesName, flagWhereName} {
			if cmd.Flags().Changed(name) {
				return app.FlagValidationError(cmd, fmt.Sprintf("--%s applies to the cpu view only", name))
			}
		}
	}
	if flagThread != "" && !util.IsDigits(flagThread) {
		return app.FlagValidationError(cmd, fmt.Sprintf("--%s must be a thread id, got %s", flagThreadName, flagThread))
	}
	if _, err := common.ParseCores(flagCores); err != nil {
		return app.FlagValidationError(cmd, err.Error())
	}
	if flagWhere != "" {
		if _, err := expr.New(flagWhere); err != nil {
			return app.FlagValidationError(cmd, err.Error())
		}
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	logType, _ := common.PidstatLogType(flagView)
	cores, _ := common.ParseCores(flagCores)
	pc := workflow.ProcessingCommand{
		Cmd: cmd,
		Jobs: []workflow.Job{{
			LogType: logType,
			Path:    app.FlagInput,
			Where:   flagWhere,
			Options: extract.Options{
				Cores:     cores,
				Thread:    flagThread,
				Statuses:  flagStatuses,
				Processes: flagProcesses,
			},
		}},
		Formats:     app.FlagFormat,
		MetricsFile: app.FlagMetricsFile,
	}
	return pc.Run()
}
