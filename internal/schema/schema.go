// Package schema defines the closed set of supported log types and shapes
// normalized rows into datasets according to each type's column layout.
package schema

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// HeaderMode tells where a log type's column names come from
type HeaderMode int

const (
	// HeaderFirstRow takes the column names from the first row. The first name is the index
	// column and is renamed to IndexColumn. A leading "#" token is discarded.
	HeaderFirstRow HeaderMode = iota
	// HeaderSecondRow takes the column names from the second row, e.g., vmstat
	HeaderSecondRow
	// HeaderPositional uses the variant's fixed column names and treats every row as data
	HeaderPositional
)

// IndexColumn is the name given to the first column of header-mode logs
const IndexColumn = "time"

// log type ids
const (
	PidstatCPU = "pidstat-cpu"
	PidstatMem = "pidstat-mem"
	PidstatIO  = "pidstat-io"
	Mpstat     = "mpstat"
	Vmstat     = "vmstat"
	Procrank   = "procrank"
	Free       = "free"
	Tcmalloc   = "tcmalloc"
	Hogs       = "hogs"
)

var (
	// ErrUnknownVariant is returned by Lookup for ids outside the registry
	ErrUnknownVariant = errors.New("unknown log type")
	// ErrSchemaMismatch is returned when a log lacks a column its type requires
	ErrSchemaMismatch = errors.New("log does not match the expected columns")
	// ErrNoHeader is returned when a header-mode log has no header row
	ErrNoHeader = errors.New("no header row found")
)

// Conversion rewrites a numeric column: the characters in Trim are stripped from the
// right of the value, and the result is divided by Divisor when it is not zero.
type Conversion struct {
	Column  string
	Trim    string
	Divisor float64
}

// kibibytes to mebibytes
const kToM = 1024

// Variant describes one supported log type
type Variant struct {
	ID          string
	Description string
	Artifact    string // file name of the normalized artifact
	Header      HeaderMode
	Columns     []string // fixed names for HeaderPositional, documentation otherwise
	Required    []string // columns that must be present
	Include     *regexp.Regexp
	TimeColumn  string   // carry timestamps found in this column into a time column
	Digits      []string // rows whose value is not all digits are dropped, e.g., repeated headers
	Numeric     []string // rows whose value is not a number are dropped as malformed
	Conversions []Conversion
	DropMarkers []Marker // rows matching any marker are dropped
	Discard     []string // columns removed once the rows are shaped
}

// Marker identifies rows by the value of one column
type Marker struct {
	Column string
	Value  string
}

// SummaryMarker identifies the per-entity summary rows sysstat prints at the end of a run
var SummaryMarker = Marker{Column: IndexColumn, Value: "Average:"}

var hashMarker = Marker{Column: IndexColumn, Value: "#"}

var registry = []Variant{
	{
		ID:          PidstatCPU,
		Description: "pidstat per-process and per-thread CPU utilization (pidstat -u -t)",
		Artifact:    "pidstat.csv",
		Header:      HeaderFirstRow,
		Columns:     []string{"time", "uid", "tgid", "tid", "%usr", "%system", "%guest", "%wait", "%cpu", "cpu", "command"},
		Required:    []string{"tgid", "tid", "cpu", "command"},
		Numeric:     []string{"%cpu"},
	},
	{
		ID:          PidstatMem,
		Description: "pidstat memory utilization (pidstat -r)",
		Artifact:    "pidstat.csv",
		Header:      HeaderFirstRow,
		Columns:     []string{"time", "uid", "pid", "minflt/s", "majflt/s", "vsz", "rss", "%mem", "command"},
		Required:    []string{"vsz", "rss", "command"},
		Conversions: []Conversion{
			{Column: "vsz", Divisor: kToM},
			{Column: "rss", Divisor: kToM},
		},
		DropMarkers: []Marker{hashMarker, SummaryMarker},
	},
	{
		ID:          PidstatIO,
		Description: "pidstat I/O statistics (pidstat -d)",
		Artifact:    "pidstat.csv",
		Header:      HeaderFirstRow,
		Columns:     []string{"time", "uid", "pid", "kb_rd/s", "kb_wr/s", "kb_ccwr/s", "iodelay", "command"},
		Required:    []string{"kb_rd/s", "kb_wr/s", "command"},
		Numeric:     []string{"kb_rd/s", "kb_wr/s"},
		DropMarkers: []Marker{hashMarker, SummaryMarker},
	},
	{
		ID:          Mpstat,
		Description: "mpstat per-core CPU utilization (mpstat -P ALL)",
		Artifact:    "mpstat.csv",
		Header:      HeaderFirstRow,
		Columns:     []string{"time", "cpu", "%usr", "%nice", "%sys", "%iowait", "%irq", "%soft", "%steal", "%guest", "%gnice", "%idle"},
		Required:    []string{"cpu"},
		Numeric:     []string{"%idle"},
	},
	{
		ID:          Vmstat,
		Description: "vmstat virtual memory statistics",
		Artifact:    "vmstat.csv",
		Header:      HeaderSecondRow,
		Columns:     []string{"r", "b", "swpd", "free", "buff", "cache", "si", "so", "bi", "bo", "in", "cs", "us", "sy", "id", "wa", "st"},
		Required:    []string{"r", "swpd", "free", "buff", "cache"},
		Digits:      []string{"r"},
		Conversions: []Conversion{
			{Column: "swpd", Divisor: kToM},
			{Column: "free", Divisor: kToM},
			{Column: "buff", Divisor: kToM},
			{Column: "cache", Divisor: kToM},
		},
	},
	{
		ID:          Procrank,
		Description: "procrank process memory ranking",
		Artifact:    "procrank.csv",
		Header:      HeaderPositional,
		Columns:     []string{"pid", "vss", "rss", "pss", "uss", "command"},
		TimeColumn:  "pid",
		DropMarkers: []Marker{
			{Column: "pid", Value: "------"},
			{Column: "rss", Value: "TOTAL"},
			{Column: "pid", Value: "RAM:"},
		},
		Conversions: []Conversion{
			{Column: "vss", Trim: "K", Divisor: kToM},
			{Column: "rss", Trim: "K", Divisor: kToM},
			{Column: "pss", Trim: "K", Divisor: kToM},
			{Column: "uss", Trim: "K", Divisor: kToM},
		},
	},
	{
		ID:          Free,
		Description: "free memory report",
		Artifact:    "free.csv",
		Header:      HeaderPositional,
		Columns:     []string{"type", "total", "used", "free", "shared", "buff/cache", "available"},
		TimeColumn:  "type",
		Conversions: []Conversion{
			{Column: "available", Divisor: kToM},
		},
	},
	{
		ID:          Tcmalloc,
		Description: "tcmalloc mini allocator log",
		Artifact:    "tcmalloc.csv",
		Header:      HeaderPositional,
		Columns:     []string{"c1", "c2", "c3", "mem", "c4", "c5", "c6", "c7", "c8", "tid", "c10", "c11", "c12", "c13"},
		Include:     regexp.MustCompile(`^TCMALLOC_MINI\(USER\).*thread_one \d`),
		Discard:     []string{"c1"}, // the TCMALLOC_MINI(USER) tag
		Conversions: []Conversion{
			{Column: "mem", Trim: "K", Divisor: kToM},
		},
	},
	{
		ID:          Hogs,
		Description: "QNX hogs CPU and memory usage",
		Artifact:    "hogs.csv",
		Header:      HeaderPositional,
		Columns:     []string{"pid", "name", "msec", "pids", "sys", "memory", "mem%"},
		Conversions: []Conversion{
			{Column: "sys", Trim: "%"},
			{Column: "memory", Trim: "kK", Divisor: kToM},
			{Column: "mem%", Trim: "%"},
		},
	},
}

// IDs returns the ids of all variants in registry order
func IDs() []string {
	var ids []string
	for _, v := range registry {
		ids = append(ids, v.ID)
	}
	return ids
}

// Lookup returns the variant with the given id
func Lookup(id string) (Variant, error) {
	for _, v := range registry {
		if v.ID == id {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %s, valid types are: %s", ErrUnknownVariant, id, strings.Join(IDs(), ", "))
}

// MustLookup is Lookup for ids known at compile time
func MustLookup(id string) Variant {
	v, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return v
}

// HasColumn reports whether the variant's documented column set includes name
func (v Variant) HasColumn(name string) bool {
	return slices.Contains(v.Columns, name)
}
