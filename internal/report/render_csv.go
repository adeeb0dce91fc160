package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sclean/internal/table"
)

// WriteTableCSV writes the table as csv: one header row of field names, then one row per value index
func WriteTableCSV(w io.Writer, tableValues table.TableValues) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		header[i] = field.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for row := range tableValues.NumRows() {
		record := make([]string, len(tableValues.Fields))
		for i, field := range tableValues.Fields {
			record[i] = field.Values[row]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFiles writes every table that has a FileName into outputDir and returns the paths written
func WriteCSVFiles(outputDir string, allTableValues []table.TableValues) (paths []string, err error) {
	for _, tableValues := range allTableValues {
		if tableValues.FileName == "" {
			continue
		}
		path := filepath.Join(outputDir, tableValues.FileName)
		if err = writeCSVFile(path, tableValues); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		slog.Debug("wrote table", slog.String("table", tableValues.Name), slog.String("path", path), slog.Int("rows", tableValues.NumRows()))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, tableValues table.TableValues) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) // #nosec G302
	if err != nil {
		return err
	}
	if err := WriteTableCSV(f, tableValues); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
