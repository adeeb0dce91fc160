// Package expr evaluates user supplied row filters such as "[%cpu] > 5 && process == 'app'".
package expr

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/casbin/govaluate"

	"sclean/internal/table"
)

// Filter is a boolean expression over the columns of a record. Column names that are not
// plain identifiers, e.g., %cpu or kb_rd/s, are written in brackets: [%cpu].
type Filter struct {
	expression string
	evaluable  *govaluate.EvaluableExpression
}

// New parses the expression once so it can be evaluated for many records
func New(expression string) (*Filter, error) {
	evaluable, err := govaluate.NewEvaluableExpressionWithFunctions(expression, getEvaluatorFunctions())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return &Filter{expression: expression, evaluable: evaluable}, nil
}

// Vars returns the column names the expression refers to
func (f *Filter) Vars() []string {
	return f.evaluable.Vars()
}

// Validate checks that every column the expression refers to is one of columns
func (f *Filter) Validate(columns []string) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, v := range f.Vars() {
		if !known[v] {
			return fmt.Errorf("filter %q refers to unknown column %s, columns are: %s", f.expression, v, strings.Join(columns, ", "))
		}
	}
	return nil
}

// Match evaluates the expression for one record. Numeric values are compared as numbers,
// everything else as strings.
func (f *Filter) Match(r table.Record) (bool, error) {
	variables := make(map[string]any, len(r.Columns()))
	for _, column := range r.Columns() {
		variables[column] = value(r.Get(column))
	}
	result, err := f.evaluable.Evaluate(variables)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter %q: %w", f.expression, err)
	}
	matched, ok := result.(bool)
	if !ok {
		slog.Debug("filter did not evaluate to a boolean", slog.String("expression", f.expression), slog.Any("result", result))
		return false, fmt.Errorf("filter %q does not evaluate to true or false", f.expression)
	}
	return matched, nil
}

func value(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// getEvaluatorFunctions defines functions that can be called in filter expressions
func getEvaluatorFunctions() (functions map[string]govaluate.ExpressionFunction) {
	functions = make(map[string]govaluate.ExpressionFunction)
	// contains(column, 'text')
	functions["contains"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("contains expects 2 arguments, got %d", len(args))
		}
		return strings.Contains(fmt.Sprint(args[0]), fmt.Sprint(args[1])), nil
	}
	// prefix(column, 'text')
	functions["prefix"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("prefix expects 2 arguments, got %d", len(args))
		}
		return strings.HasPrefix(fmt.Sprint(args[0]), fmt.Sprint(args[1])), nil
	}
	return
}
