// Package affinity computes which CPU cores each process or thread ran on and
// groups the per-entity summary rows by that affinity.
package affinity

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"log/slog"
	"slices"
	"strconv"

	"sclean/internal/table"
	"sclean/internal/util"

	mapset "github.com/deckarep/golang-set/v2"
)

// column names read by the tracker
const (
	TgidColumn = "tgid"
	TidColumn  = "tid"
	CPUColumn  = "cpu"
)

// EntityKey identifies a process or thread: the tid when it is numeric, otherwise the tgid
type EntityKey int64

func (k EntityKey) String() string {
	return strconv.FormatInt(int64(k), 10)
}

// Set maps each entity to the distinct cores it was observed on
type Set map[EntityKey]mapset.Set[string]

// TrackStats counts the detail rows seen by Track
type TrackStats struct {
	Rows      int
	Tracked   int
	Malformed int
}

// KeyOf returns the entity key of a record. ok is false when neither tid nor tgid is numeric.
func KeyOf(r table.Record) (key EntityKey, ok bool) {
	for _, column := range []string{TidColumn, TgidColumn} {
		value := r.Get(column)
		if !util.IsDigits(value) {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		return EntityKey(n), true
	}
	return 0, false
}

// Track builds the affinity set from detail records. Records without a usable key
// or with a non-numeric core are skipped and counted as malformed.
func Track(detail []table.Record) (Set, TrackStats) {
	set := make(Set)
	var stats TrackStats
	for _, r := range detail {
		stats.Rows++
		key, ok := KeyOf(r)
		core := r.Get(CPUColumn)
		if !ok || !util.IsDigits(core) {
			stats.Malformed++
			slog.Debug("skipping row without entity key or core", slog.String("tid", r.Get(TidColumn)), slog.String("tgid", r.Get(TgidColumn)), slog.String("cpu", core))
			continue
		}
		cores, exists := set[key]
		if !exists {
			cores = mapset.NewSet[string]()
			set[key] = cores
		}
		cores.Add(core)
		stats.Tracked++
	}
	return set, stats
}

// Cores returns the cores observed for key in ascending numeric order
func (s Set) Cores(key EntityKey) []string {
	cores, ok := s[key]
	if !ok {
		return nil
	}
	return sortCores(cores.ToSlice())
}

// Pinned reports whether key was observed on exactly one core
func (s Set) Pinned(key EntityKey) bool {
	cores, ok := s[key]
	return ok && cores.Cardinality() == 1
}

func sortCores(cores []string) []string {
	slices.SortFunc(cores, compareCores)
	return cores
}

func compareCores(a, b string) int {
	ai, aerr := strconv.Atoi(util.OnlyDigits(a))
	bi, berr := strconv.Atoi(util.OnlyDigits(b))
	if aerr == nil && berr == nil && ai != bi {
		if ai < bi {
			return -1
		}
		return 1
	}
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
