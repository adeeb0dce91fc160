// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package normalize turns free-form monitoring utility output into whitespace-tokenized rows.
package normalize

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// ErrMissingInput is returned when the source file does not exist
var ErrMissingInput = errors.New("does not exist")

// DefaultBanner matches the banner line the sysstat utilities print first
var DefaultBanner = regexp.MustCompile(`Linux`)

const maxLineSize = 1024 * 1024

// Options controls which lines survive normalization
type Options struct {
	Banner  *regexp.Regexp // lines matching are dropped, DefaultBanner when nil
	Include *regexp.Regexp // when set, only lines matching are kept
}

// Normalize reads the file at path and returns one row of tokens per kept line.
// Files ending in .gz or .zst are decompressed. Files ending in .csv (after any
// compression suffix) are treated as previously written artifacts and read back as csv.
func Normalize(path string, opts Options) ([][]string, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %w", path, ErrMissingInput)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	name := path
	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read gzip header of %s", path)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, filepath.Ext(name))
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create zstd decoder for %s", path)
		}
		defer dec.Close()
		r = dec
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	var rows [][]string
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		rows, err = readArtifact(r)
	} else {
		rows, err = NormalizeReader(r, opts)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to normalize %s", path)
	}
	slog.Debug("normalized log", slog.String("path", path), slog.Int("rows", len(rows)))
	return rows, nil
}

// NormalizeReader applies the line rules to everything read from r
func NormalizeReader(r io.Reader, opts Options) ([][]string, error) {
	banner := opts.Banner
	if banner == nil {
		banner = DefaultBanner
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var rows [][]string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			slog.Warn("dropping line that is not valid UTF-8", slog.Int("line", lineNo))
			continue
		}
		if banner.MatchString(line) {
			continue
		}
		if opts.Include != nil && !opts.Include.MatchString(line) {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		rows = append(rows, tokens)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return rows, nil
}

func readArtifact(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return rows, nil
}

// WriteArtifact writes rows to path as csv. Rows may have differing lengths.
func WriteArtifact(path string, rows [][]string) (err error) {
	f, err := os.Create(path) // #nosec G304
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "failed to close %s", path)
		}
	}()
	if err = csv.NewWriter(f).WriteAll(rows); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
