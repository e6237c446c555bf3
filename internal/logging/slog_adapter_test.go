// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := slog.New(NewSlogHandler())

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Debug", func() { logger.Debug("d") }, "debug"},
		{"Info", func() { logger.Info("i") }, "info"},
		{"Warn", func() { logger.Warn("w") }, "warn"},
		{"Error", func() { logger.Error("e") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()
			if !strings.Contains(buf.String(), `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %q, got: %s", tt.level, buf.String())
			}
		})
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := slog.New(NewSlogHandler())
	logger.Info("attrs",
		slog.String("service", "api"),
		slog.Int("restarts", 2),
		slog.Bool("healthy", true),
	)

	output := buf.String()
	for _, want := range []string{`"service":"api"`, `"restarts":2`, `"healthy":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := slog.New(NewSlogHandler()).With(slog.String("supervisor", "root"))
	logger = logger.WithGroup("service")
	logger.Info("event", slog.String("name", "ingest"))

	output := buf.String()
	if !strings.Contains(output, `"supervisor":"root"`) {
		t.Errorf("expected inherited attr, got: %s", output)
	}
	if !strings.Contains(output, `"service.name":"ingest"`) {
		t.Errorf("expected group-prefixed attr, got: %s", output)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	SetLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	defer Init(DefaultConfig())

	h := NewSlogHandler()
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
