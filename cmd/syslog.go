package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"log/slog"
	"log/syslog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// syslogHandler formats records with a slog.TextHandler and sends each line to syslog
// at the priority matching the record level.
type syslogHandler struct {
	mu     *sync.Mutex
	buf    *bytes.Buffer
	text   slog.Handler
	writer *syslog.Writer
}

func newSyslogHandler(opts *slog.HandlerOptions) (*syslogHandler, error) {
	writer, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, filepath.Base(os.Args[0]))
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	return &syslogHandler{mu: &sync.Mutex{}, buf: buf, text: slog.NewTextHandler(buf, opts), writer: writer}, nil
}

func (h *syslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

func (h *syslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	line := strings.TrimSuffix(h.buf.String(), "\n")
	switch {
	case r.Level >= slog.LevelError:
		return h.writer.Err(line)
	case r.Level >= slog.LevelWarn:
		return h.writer.Warning(line)
	case r.Level >= slog.LevelInfo:
		return h.writer.Info(line)
	default:
		return h.writer.Debug(line)
	}
}

// the derived handlers share the buffer, its lock and the syslog connection
func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syslogHandler{mu: h.mu, buf: h.buf, text: h.text.WithAttrs(attrs), writer: h.writer}
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	return &syslogHandler{mu: h.mu, buf: h.buf, text: h.text.WithGroup(name), writer: h.writer}
}
