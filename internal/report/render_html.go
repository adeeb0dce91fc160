package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sclean/internal/table"
)

var customHTMLRenderers = map[string]table.HTMLTableRenderer{}

// RegisterHTMLRenderer replaces the default html table rendering of the named table
func RegisterHTMLRenderer(tableName string, renderer table.HTMLTableRenderer) {
	customHTMLRenderers[tableName] = renderer
}

// maxHTMLTableRows limits the rows printed below the charts, the csv export holds them all
const maxHTMLTableRows = 1000

const htmlStyle = `
	<style>
		body { margin: 0; font-family: "Segoe UI", Helvetica, Arial, sans-serif; color: #222; background: #f5f6f8; }
		header.sclean { display: flex; align-items: baseline; gap: 1em; padding: 0.8em 2em; background: #23395d; color: #fff; }
		header.sclean .brand { font-weight: 700; letter-spacing: 0.08em; text-transform: uppercase; }
		header.sclean h1 { margin: 0; font-size: 1.3em; font-weight: 400; }
		nav.sclean { position: sticky; top: 0; z-index: 2; padding: 0.4em 2em; background: #e3e8f0; border-bottom: 1px solid #c5ccd8; }
		nav.sclean ul { display: inline; margin: 0; padding: 0; list-style: none; }
		nav.sclean li { display: inline-block; margin-right: 1.2em; }
		nav.sclean li li { margin-right: 0.6em; font-size: 0.85em; }
		nav.sclean a { color: #23395d; text-decoration: none; }
		nav.sclean a:hover { text-decoration: underline; }
		main.sclean { padding: 1em 2em; }
		section.log-table { margin-bottom: 2em; padding: 0.5em 1.2em 1em; background: #fff; border: 1px solid #dde1e8; border-radius: 4px; scroll-margin-top: 3em; }
		section.log-table h2 { margin: 0.3em 0; font-weight: 500; color: #23395d; }
		section.log-table h3 { margin: 1.2em 0 0.3em; font-weight: 500; scroll-margin-top: 3em; }
		section.log-table .meta { margin: 0 0 0.8em; color: #777; font-size: 0.85em; }
		table.log-rows { border-collapse: collapse; font-size: 0.85em; }
		table.log-rows th, table.log-rows td { padding: 0.25em 0.8em; border-bottom: 1px solid #e6e8ec; text-align: left; }
		table.log-rows th { background: #eef1f6; }
		table.log-rows tbody tr:nth-child(even) { background: #fafbfc; }
		table.log-fields td:first-child { font-weight: 600; }
	</style>
`

// TableAnchor returns the html id of a table section
func TableAnchor(tableName string) string {
	return slug(tableName)
}

// SectionAnchor returns the html id of a row section within a table
func SectionAnchor(tableName, sectionName string) string {
	return slug(tableName) + "--" + slug(sectionName)
}

func slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

func htmlHead(title string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("\t<meta charset=\"UTF-8\">\n")
	sb.WriteString("\t<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString(fmt.Sprintf("\t<title>sclean - %s</title>\n", html.EscapeString(title)))
	sb.WriteString("\t<script src=\"https://unpkg.com/chart.js@3.7.1/dist/chart.min.js\" integrity=\"sha384-7NrRHqlWUj2hJl3a/dZj/a1GxuQc56mJ3aYsEnydBYrY1jR+RSt6SBvK3sHfj+mJ\" crossorigin=\"anonymous\" referrerpolicy=\"no-referrer\"></script>\n")
	sb.WriteString(htmlStyle)
	sb.WriteString("</head>\n")
	return sb.String()
}

// htmlMenu lists the tables that carry a menu label. Tables split into row
// sections, such as the affinity buckets, get one nested link per section.
func htmlMenu(allTableValues []table.TableValues) string {
	var sb strings.Builder
	for _, tableValues := range allTableValues {
		if tableValues.MenuLabel == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("<li><a href=\"#%s\">%s</a>", TableAnchor(tableValues.Name), html.EscapeString(tableValues.MenuLabel)))
		if len(tableValues.Sections) > 0 {
			sb.WriteString("<ul>")
			for _, section := range tableValues.Sections {
				sb.WriteString(fmt.Sprintf("<li><a href=\"#%s\">%s</a></li>", SectionAnchor(tableValues.Name, section.Name), html.EscapeString(section.Name)))
			}
			sb.WriteString("</ul>")
		}
		sb.WriteString("</li>\n")
	}
	if sb.Len() == 0 {
		return ""
	}
	return "<nav class=\"sclean\"><ul>\n" + sb.String() + "</ul></nav>\n"
}

func createHtmlReport(allTableValues []table.TableValues, title string) (out []byte, err error) {
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	sb.WriteString(htmlHead(title))
	sb.WriteString("<body>\n")
	sb.WriteString(fmt.Sprintf("<header class=\"sclean\"><span class=\"brand\">sclean</span><h1>%s</h1></header>\n", html.EscapeString(title)))
	sb.WriteString(htmlMenu(allTableValues))
	sb.WriteString("<main class=\"sclean\">\n")
	sb.WriteString("<noscript><p>Charts need JavaScript.</p></noscript>\n")
	for tableIdx, tableValues := range allTableValues {
		sb.WriteString(fmt.Sprintf("<section class=\"log-table\" id=\"%s\">\n", TableAnchor(tableValues.Name)))
		sb.WriteString(fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(tableValues.Name)))
		if noData(tableValues) {
			sb.WriteString("<p class=\"meta\">" + html.EscapeString(noDataMessage(tableValues)) + "</p>\n</section>\n")
			continue
		}
		if tableValues.HasRows {
			meta := p.Sprintf("%d rows", tableValues.NumRows())
			if tableValues.FileName != "" {
				meta += ", exported to " + tableValues.FileName
			}
			sb.WriteString("<p class=\"meta\">" + html.EscapeString(meta) + "</p>\n")
		}
		for chartIdx, chart := range tableValues.Charts {
			sb.WriteString(RenderTableChart(tableValues, chart, fmt.Sprintf("chart%d_%d", tableIdx, chartIdx)))
		}
		if renderer := customHTMLRenderers[tableValues.Name]; renderer != nil {
			sb.WriteString(renderer(tableValues))
		} else {
			sb.WriteString(DefaultHTMLTableRendererFunc(tableValues))
		}
		sb.WriteString("</section>\n")
	}
	sb.WriteString("</main>\n</body>\n</html>\n")
	out = []byte(sb.String())
	return
}

func headerCell(field table.Field) string {
	if field.Description == "" {
		return "<th>" + html.EscapeString(field.Name) + "</th>"
	}
	return fmt.Sprintf("<th title=\"%s\">%s</th>", html.EscapeString(field.Description), html.EscapeString(field.Name))
}

// DefaultHTMLTableRendererFunc renders row tables with a header row and other
// tables as name/value pairs
func DefaultHTMLTableRendererFunc(tableValues table.TableValues) string {
	var sb strings.Builder
	if !tableValues.HasRows {
		sb.WriteString("<table class=\"log-rows log-fields\"><tbody>")
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = field.Values[0]
			}
			sb.WriteString("<tr><td>" + html.EscapeString(field.Name) + "</td><td>" + html.EscapeString(value) + "</td></tr>")
		}
		sb.WriteString("</tbody></table>\n")
		return sb.String()
	}
	sb.WriteString("<table class=\"log-rows\"><thead><tr>")
	for _, field := range tableValues.Fields {
		sb.WriteString(headerCell(field))
	}
	sb.WriteString("</tr></thead><tbody>")
	numRows := tableValues.NumRows()
	for row := range min(numRows, maxHTMLTableRows) {
		sb.WriteString("<tr>")
		for _, field := range tableValues.Fields {
			sb.WriteString("<td>" + html.EscapeString(field.Values[row]) + "</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>\n")
	if numRows > maxHTMLTableRows {
		sb.WriteString(fmt.Sprintf("<p class=\"meta\">Showing the first %d of %d rows.</p>\n", maxHTMLTableRows, numRows))
	}
	return sb.String()
}
