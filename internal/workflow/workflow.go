// Package workflow implements the common flow/logic for the log processing commands
// (pidstat, mpstat, vmstat, tcmalloc, procrank, free, hogs, batch). It checks the
// input, normalizes and shapes the log, runs the log type's processor, and writes
// the artifact, exports and reports.
package workflow

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"sclean/internal/app"
	"sclean/internal/expr"
	"sclean/internal/extract"
	"sclean/internal/normalize"
	"sclean/internal/progress"
	"sclean/internal/promfile"
	"sclean/internal/propagate"
	"sclean/internal/report"
	"sclean/internal/schema"
	"sclean/internal/util"

	"github.com/spf13/cobra"
)

// Job is one log to process
type Job struct {
	LogType string // schema variant id, e.g., pidstat-cpu
	Path    string
	Where   string // optional filter expression, pidstat-cpu only
	Options extract.Options
}

// Outcome lists what processing one log produced
type Outcome struct {
	LogType  string
	Artifact string
	Files    []string
	Warnings []string
}

// ProcessingCommand represents a command that processes one or more logs
type ProcessingCommand struct {
	Cmd         *cobra.Command
	Jobs        []Job
	Formats     []string // report formats in addition to csv, may be empty
	MetricsFile string
}

// Run is the common flow/logic for all log processing commands. The individual commands
// populate the ProcessingCommand struct with their jobs and then call this Run function.
// Jobs run in order and the first error stops the run.
func (pc *ProcessingCommand) Run() error {
	appContext := pc.Cmd.Parent().Context().Value(app.Context{}).(app.Context)
	outputDir := appContext.OutputDir
	formats, err := report.Formats(pc.Formats)
	if err != nil {
		return app.FlagValidationError(pc.Cmd, err.Error())
	}
	if err := util.CreateDirectoryIfNotExists(outputDir, 0755); err != nil { // #nosec G301
		err = fmt.Errorf("failed to create output directory: %w", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		pc.Cmd.SilenceUsage = true
		return err
	}
	var collector *promfile.Collector
	if pc.MetricsFile != "" {
		collector = promfile.New()
	}
	// stop between logs on ctrl+c
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// show progress when there is more than one log to process
	var multiSpinner *progress.MultiSpinner
	status := func(string, string) error { return nil }
	if len(pc.Jobs) > 1 {
		multiSpinner = progress.NewMultiSpinner()
		for _, job := range pc.Jobs {
			if err := multiSpinner.AddSpinner(job.LogType); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				slog.Error(err.Error())
				pc.Cmd.SilenceUsage = true
				return err
			}
		}
		multiSpinner.Start()
		status = multiSpinner.Status
	}
	var outcomes []Outcome
	for _, job := range pc.Jobs {
		if ctx.Err() != nil {
			err = fmt.Errorf("interrupted before processing %s", job.Path)
			break
		}
		var outcome Outcome
		outcome, err = ProcessLog(job, outputDir, formats, collector, status)
		if err != nil {
			_ = status(job.LogType, "failed")
			break
		}
		_ = status(job.LogType, "done")
		outcomes = append(outcomes, outcome)
	}
	if multiSpinner != nil {
		multiSpinner.Finish()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		pc.Cmd.SilenceUsage = true
		return err
	}
	if collector != nil {
		if err := collector.WriteTextfile(pc.MetricsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			pc.Cmd.SilenceUsage = true
			return err
		}
	}
	for _, outcome := range outcomes {
		for _, warning := range outcome.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", outcome.LogType, warning)
		}
	}
	// a lone text report goes to the terminal too
	if len(pc.Jobs) == 1 && len(formats) == 1 && formats[0] == report.FormatTxt && len(outcomes) == 1 {
		for _, file := range outcomes[0].Files {
			if filepath.Ext(file) == "."+report.FormatTxt {
				content, err := os.ReadFile(file) // #nosec G304
				if err == nil {
					fmt.Print(string(content))
				}
			}
		}
	}
	fmt.Println("Output files:")
	for _, outcome := range outcomes {
		fmt.Printf("  %s\n", outcome.Artifact)
		for _, file := range outcome.Files {
			fmt.Printf("  %s\n", file)
		}
	}
	return nil
}

// ProcessLog runs one log through the pipeline and writes its outputs into outputDir.
// collector may be nil.
func ProcessLog(job Job, outputDir string, formats []string, collector *promfile.Collector, status progress.MultiSpinnerUpdateFunc) (outcome Outcome, err error) {
	outcome.LogType = job.LogType
	variant, err := schema.Lookup(job.LogType)
	if err != nil {
		return
	}
	exists, err := util.FileExists(job.Path)
	if err != nil {
		return
	}
	if !exists {
		err = fmt.Errorf("%s %w", job.Path, normalize.ErrMissingInput)
		return
	}
	slog.Info("processing log", slog.String("log", job.LogType), slog.String("path", job.Path))

	_ = status(job.LogType, "normalizing")
	rows, err := normalize.Normalize(job.Path, normalize.Options{Include: variant.Include})
	if err != nil {
		return
	}
	outcome.Artifact = filepath.Join(outputDir, variant.Artifact)
	if err = normalize.WriteArtifact(outcome.Artifact, rows); err != nil {
		return
	}

	_ = status(job.LogType, "shaping")
	ds, shapeStats, err := variant.Shape(rows)
	if err != nil {
		err = fmt.Errorf("%s: %w", job.Path, err)
		return
	}

	_ = status(job.LogType, "processing")
	opts := job.Options
	opts.Source = job.Path
	if job.Where != "" {
		var filter *expr.Filter
		filter, err = expr.New(job.Where)
		if err != nil {
			return
		}
		columns := slices.Clone(ds.Columns)
		if !slices.Contains(columns, propagate.ProcessColumn) {
			columns = append(columns, propagate.ProcessColumn)
		}
		if err = filter.Validate(columns); err != nil {
			return
		}
		opts.Filter = filter
	}
	result, err := extract.Process(job.LogType, ds, opts)
	if err != nil {
		return
	}
	outcome.Warnings = result.Warnings
	for _, warning := range result.Warnings {
		slog.Warn(warning, slog.String("log", job.LogType))
	}
	if collector != nil {
		collector.Observe(job.LogType, shapeStats, result)
	}

	_ = status(job.LogType, "writing")
	files, err := report.WriteCSVFiles(outputDir, result.Tables)
	if err != nil {
		return
	}
	outcome.Files = append(outcome.Files, files...)
	title := fmt.Sprintf("%s %s", job.LogType, filepath.Base(job.Path))
	for _, format := range formats {
		var reportBytes []byte
		reportBytes, err = report.Create(format, result.Tables, title)
		if err != nil {
			err = fmt.Errorf("failed to create report: %w", err)
			return
		}
		reportPath := filepath.Join(outputDir, fmt.Sprintf("%s.%s", job.LogType, format))
		if err = os.WriteFile(reportPath, reportBytes, 0644); err != nil { // #nosec G306
			err = fmt.Errorf("failed to write report file: %w", err)
			return
		}
		outcome.Files = append(outcome.Files, reportPath)
	}
	slog.Info("processed log", slog.String("log", job.LogType), slog.Int("files", len(outcome.Files)), slog.Int("warnings", len(outcome.Warnings)))
	return
}
