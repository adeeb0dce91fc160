// Package cmd provides the command line interface for the application.
package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sclean/cmd/batch"
	"sclean/cmd/free"
	"sclean/cmd/hogs"
	"sclean/cmd/mpstat"
	"sclean/cmd/pidstat"
	"sclean/cmd/procrank"
	"sclean/cmd/tcmalloc"
	"sclean/cmd/vmstat"
	"sclean/internal/app"
	"sclean/internal/util"

	"github.com/spf13/cobra"
)

var gLogFile *os.File
var gVersion = "9.9.9" // overwritten by ldflags at build time

var examples = []string{
	fmt.Sprintf("  Partition pidstat threads by core:    $ %s pidstat --input pidstat.log --cores 0-3", app.Name),
	fmt.Sprintf("  Chart mpstat cores as html:           $ %s mpstat --input mpstat.log --cores 0,1 --format html", app.Name),
	fmt.Sprintf("  Process every log listed in a file:   $ %s batch --job job.yaml --output ./results", app.Name),
}

var rootCmd = &cobra.Command{
	Use:                app.Name,
	Short:              app.Name,
	Long:               fmt.Sprintf(`%s normalizes the output of system monitoring utilities (pidstat, mpstat, vmstat, procrank, free, tcmalloc, hogs) into csv tables and charts.`, app.Name),
	Example:            strings.Join(examples, "\n"),
	PersistentPreRunE:  initializeApplication,
	PersistentPostRunE: terminateApplication,
	Version:            gVersion,
}

var (
	flagDebug     bool
	flagSyslog    bool
	flagLogStdOut bool
	flagOutputDir string
)

// commands are listed by group, one line each
const usageTemplate = `Usage:
  {{.CommandPath}} [command] [flags]{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{$cmds := .Commands}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if and (eq .GroupID $group.ID) .IsAvailableCommand}}
  {{rpad .Name .NamePadding}} {{.Short}}{{end}}{{end}}{{end}}

Global Flags:
{{.PersistentFlags.FlagUsages | trimTrailingWhitespaces}}

Run "{{.CommandPath}} [command] --help" for the flags of a command.
`

func init() {
	rootCmd.SetUsageTemplate(usageTemplate)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddGroup(&cobra.Group{ID: "primary", Title: "Log Commands:"}, &cobra.Group{ID: "other", Title: "Other Commands:"})
	for _, cmd := range []*cobra.Command{pidstat.Cmd, mpstat.Cmd, vmstat.Cmd, tcmalloc.Cmd, procrank.Cmd, free.Cmd, hogs.Cmd, batch.Cmd} {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.PersistentFlags().BoolVar(&flagDebug, app.FlagDebugName, false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagSyslog, app.FlagSyslogName, false, "write logs to syslog instead of a file")
	rootCmd.PersistentFlags().BoolVar(&flagLogStdOut, app.FlagLogStdOutName, false, "write logs to stdout")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, app.FlagOutputDirName, "", "override the output directory, must exist")
}

// Execute runs the command named on the command line. This is called by main.main().
func Execute() {
	cobra.EnableCommandSorting = false
	cobra.EnableCaseInsensitive = true
	if err := rootCmd.Execute(); err != nil {
		if err := terminateApplication(rootCmd, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// resolveOutputDir returns the absolute output directory. A requested directory must
// exist; otherwise a timestamped directory name in the working directory is returned
// and the workflow creates it when there is output.
func resolveOutputDir(requested string, timestamp string) (string, error) {
	if requested == "" {
		return util.AbsPath(app.Name + "_" + timestamp)
	}
	outputDir, err := util.AbsPath(requested)
	if err != nil {
		return "", fmt.Errorf("failed to expand output dir: %w", err)
	}
	exists, err := util.DirectoryExists(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to check output dir: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("requested output dir, %s, does not exist", outputDir)
	}
	return outputDir, nil
}

// configureLogging installs the default slog handler chosen by the logging flags. The
// log file, when one is opened, is returned so that it can be closed at exit.
func configureLogging(debug, toSyslog, toStdout bool) (*os.File, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	switch {
	case toSyslog && toStdout:
		return nil, fmt.Errorf("--%s and --%s cannot be combined", app.FlagSyslogName, app.FlagLogStdOutName)
	case toSyslog:
		handler, err := newSyslogHandler(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to syslog: %w", err)
		}
		slog.SetDefault(slog.New(handler))
		return nil, nil
	case toStdout:
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
		return nil, nil
	}
	logFile, err := os.OpenFile(app.Name+".log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) // #nosec G302
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, opts)))
	return logFile, nil
}

func initializeApplication(cmd *cobra.Command, args []string) error {
	timestamp := time.Now().Local().Format("2006-01-02_15-04-05")
	outputDir, err := resolveOutputDir(flagOutputDir, timestamp)
	if err == nil {
		gLogFile, err = configureLogging(flagDebug, flagSyslog, flagLogStdOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cmd.SilenceUsage = true
		return err
	}
	slog.Info("starting", slog.String("app", app.Name), slog.String("version", gVersion), slog.Int("pid", os.Getpid()), slog.String("arguments", strings.Join(os.Args, " ")))
	appContext := app.Context{
		Timestamp: timestamp,
		OutputDir: outputDir,
		Version:   gVersion,
		Debug:     flagDebug,
	}
	if gLogFile != nil {
		appContext.LogFilePath = gLogFile.Name()
	}
	cmd.Parent().SetContext(context.WithValue(context.Background(), app.Context{}, appContext))
	return nil
}

// terminateApplication closes the log file once the application context has been set up
func terminateApplication(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cmd.Parent() != nil {
		ctx = cmd.Parent().Context()
	}
	if ctx == nil {
		return nil
	}
	if _, ok := ctx.Value(app.Context{}).(app.Context); !ok {
		return nil
	}
	slog.Info("exiting", slog.String("app", app.Name), slog.Int("pid", os.Getpid()))
	if gLogFile == nil {
		return nil
	}
	err := gLogFile.Close()
	gLogFile = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
