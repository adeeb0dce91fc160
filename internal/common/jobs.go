// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package common

import (
	"fmt"
	"os"
	"strconv"

	"sclean/internal/schema"
	"sclean/internal/util"
	"sclean/internal/workflow"

	"gopkg.in/yaml.v2"
)

type jobFromYAML struct {
	Path      string   `yaml:"path"`
	View      string   `yaml:"view"`  // pidstat only
	Cores     string   `yaml:"cores"` // e.g., "0-3,7"
	Thread    int      `yaml:"thread"`
	Statuses  []string `yaml:"statuses"`
	Processes []string `yaml:"processes"`
	Sections  []string `yaml:"sections"` // vmstat only
	Where     string   `yaml:"where"`    // pidstat cpu view only
}

// jobsFile lists at most one job per log type. The field order is the processing order.
type jobsFile struct {
	Pidstat  *jobFromYAML `yaml:"pidstat"`
	Mpstat   *jobFromYAML `yaml:"mpstat"`
	Vmstat   *jobFromYAML `yaml:"vmstat"`
	Tcmalloc *jobFromYAML `yaml:"tcmalloc"`
	Procrank *jobFromYAML `yaml:"procrank"`
	Free     *jobFromYAML `yaml:"free"`
	Hogs     *jobFromYAML `yaml:"hogs"`
}

// GetJobsFromFile reads a batch job file and returns its jobs in processing order:
// pidstat, mpstat, vmstat, tcmalloc, procrank, free, hogs
func GetJobsFromFile(jobsFilePath string) (jobs []workflow.Job, err error) {
	var file jobsFile
	yamlFile, err := os.ReadFile(jobsFilePath) // #nosec G304
	if err != nil {
		return
	}
	err = yaml.UnmarshalStrict(yamlFile, &file)
	if err != nil {
		err = fmt.Errorf("failed to parse job file %s: %w", jobsFilePath, err)
		return
	}
	entries := []struct {
		name string
		job  *jobFromYAML
	}{
		{"pidstat", file.Pidstat},
		{schema.Mpstat, file.Mpstat},
		{schema.Vmstat, file.Vmstat},
		{schema.Tcmalloc, file.Tcmalloc},
		{schema.Procrank, file.Procrank},
		{schema.Free, file.Free},
		{schema.Hogs, file.Hogs},
	}
	for _, entry := range entries {
		if entry.job == nil {
			continue
		}
		var job workflow.Job
		job, err = entry.job.toJob(entry.name)
		if err != nil {
			err = fmt.Errorf("job file %s, %s: %w", jobsFilePath, entry.name, err)
			return
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		err = fmt.Errorf("no jobs found in job file %s", jobsFilePath)
	}
	return
}

func (j *jobFromYAML) toJob(name string) (job workflow.Job, err error) {
	if j.Path == "" {
		err = fmt.Errorf("path is required")
		return
	}
	job.Path = util.ExpandUser(j.Path)
	job.LogType = name
	if name == "pidstat" {
		view := j.View
		if view == "" {
			view = "cpu"
		}
		job.LogType, err = PidstatLogType(view)
		if err != nil {
			return
		}
	}
	if j.Where != "" && job.LogType != schema.PidstatCPU {
		err = fmt.Errorf("where applies to the pidstat cpu view only")
		return
	}
	job.Where = j.Where
	if j.Cores != "" {
		job.Options.Cores, err = ParseCores([]string{j.Cores})
		if err != nil {
			return
		}
	}
	if j.Thread < 0 {
		err = fmt.Errorf("thread must be a positive number")
		return
	}
	if j.Thread > 0 {
		job.Options.Thread = strconv.Itoa(j.Thread)
	}
	job.Options.Statuses = j.Statuses
	job.Options.Processes = j.Processes
	job.Options.VmstatSections = j.Sections
	return
}
