// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package extract

import (
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"

	"sclean/internal/affinity"
	"sclean/internal/report"
	"sclean/internal/table"
)

func init() {
	report.RegisterHTMLRenderer(PidstatCPUTableName, pidstatCPUTableHTMLRenderer)
	report.RegisterTextRenderer(PidstatCPUTableName, pidstatCPUTableTextRenderer)
	report.RegisterXlsxRenderer(PidstatCPUTableName, pidstatCPUTableXlsxRenderer)
}

// bucketSections describes the flattened rows, one section per bucket
func bucketSections(buckets []affinity.Bucket) []table.Section {
	sections := make([]table.Section, 0, len(buckets))
	for _, b := range buckets {
		sections = append(sections, table.Section{Name: b.Name, Rows: len(b.Records)})
	}
	return sections
}

// bucketCaption returns e.g. "CPU0 (2 threads)"
func bucketCaption(bucket table.TableValues) string {
	threads := "threads"
	if bucket.NumRows() == 1 {
		threads = "thread"
	}
	if bucket.Name == affinity.UnboundBucket {
		return fmt.Sprintf("%s (%d %s seen on more than one core)", bucket.Name, bucket.NumRows(), threads)
	}
	return fmt.Sprintf("%s (%d %s)", bucket.Name, bucket.NumRows(), threads)
}

func pidstatCPUTableHTMLRenderer(tv table.TableValues) string {
	if len(tv.Sections) == 0 {
		return report.DefaultHTMLTableRendererFunc(tv)
	}
	var sb strings.Builder
	for _, bucket := range tv.SectionValues() {
		sb.WriteString(fmt.Sprintf("<h3 id=\"%s\">%s</h3>\n", report.SectionAnchor(tv.Name, bucket.Name), html.EscapeString(bucketCaption(bucket))))
		sb.WriteString(report.DefaultHTMLTableRendererFunc(bucket))
	}
	return sb.String()
}

func pidstatCPUTableTextRenderer(tv table.TableValues) string {
	if len(tv.Sections) == 0 {
		return report.DefaultTextTableRendererFunc(tv)
	}
	var sb strings.Builder
	for i, bucket := range tv.SectionValues() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(report.TextHeading(bucketCaption(bucket), '-'))
		sb.WriteString(report.DefaultTextTableRendererFunc(bucket))
	}
	return sb.String()
}

func pidstatCPUTableXlsxRenderer(tv table.TableValues, f *excelize.File, sheetName string, row *int) {
	if len(tv.Sections) == 0 {
		report.DefaultXlsxTableRendererFunc(tv, f, sheetName, row)
		return
	}
	for _, bucket := range tv.SectionValues() {
		report.WriteXlsxHeading(f, sheetName, row, bucketCaption(bucket))
		report.DefaultXlsxTableRendererFunc(bucket, f, sheetName, row)
		*row++
	}
}
