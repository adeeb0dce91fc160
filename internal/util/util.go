// Package util holds small path, string and number helpers shared by the other packages.
package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ExpandUser replaces a leading "~" with the home directory of the current user.
// The path is returned unchanged when the home directory is unknown.
func ExpandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// AbsPath is filepath.Abs after ExpandUser
func AbsPath(path string) (string, error) {
	return filepath.Abs(ExpandUser(path))
}

// pathIs reports whether path exists. It is an error for an existing path to fail isKind.
func pathIs(path string, isKind func(fs.FileMode) bool, kind string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !isKind(info.Mode()) {
		return false, fmt.Errorf("%s not a %s", path, kind)
	}
	return true, nil
}

// FileExists reports whether a regular file exists at path
func FileExists(path string) (bool, error) {
	return pathIs(path, fs.FileMode.IsRegular, "file")
}

// DirectoryExists reports whether a directory exists at path
func DirectoryExists(path string) (bool, error) {
	return pathIs(path, fs.FileMode.IsDir, "directory")
}

// CreateDirectoryIfNotExists creates dir and any missing parents
func CreateDirectoryIfNotExists(dir string, perm os.FileMode) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// UniqueAppend appends an item to a slice if it is not already present
func UniqueAppend[T comparable](slice []T, item T) []T {
	if slices.Contains(slice, item) {
		return slice
	}
	return append(slice, item)
}

// IsDigits reports whether s is a non-empty string of ASCII decimal digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// OnlyDigits returns s with every character that is not an ASCII decimal digit removed
func OnlyDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ParseFloat parses a decimal value, ignoring surrounding whitespace
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// FormatFloat formats a value with the fewest digits that represent it exactly
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var intRange = regexp.MustCompile(`^(\d+)(?:-(\d+))?$`)

// ParseIntList expands a comma separated list of integers and ranges, e.g.,
// "0-3,7" is [0 1 2 3 7]. Empty items and descending ranges are errors.
func ParseIntList(input string) ([]int, error) {
	var out []int
	for item := range strings.SplitSeq(input, ",") {
		m := intRange.FindStringSubmatch(item)
		if m == nil {
			return nil, fmt.Errorf("invalid range %q", item)
		}
		first, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, err
		}
		last := first
		if m[2] != "" {
			if last, err = strconv.Atoi(m[2]); err != nil {
				return nil, err
			}
		}
		if first > last {
			return nil, fmt.Errorf("invalid range %q, %d is greater than %d", item, first, last)
		}
		for i := first; i <= last; i++ {
			out = append(out, i)
		}
	}
	return out, nil
}
