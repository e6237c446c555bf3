// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:     "debug",
		Format:    "json",
		Timestamp: true,
		Output:    &buf,
	})
	defer Init(DefaultConfig())

	Info().Str("stage", "extract").Msg("partition written")

	output := buf.String()
	if !strings.Contains(output, "partition written") {
		t.Errorf("expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
	if !strings.Contains(output, `"stage":"extract"`) {
		t.Errorf("expected output to contain structured field, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel}, // default
		{"", zerolog.InfoLevel},        // empty
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := WithComponent("aggregator")
	logger.Info().Msg("merge complete")

	output := buf.String()
	if !strings.Contains(output, `"component":"aggregator"`) {
		t.Errorf("expected component field, got: %s", output)
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).With().Timestamp().Logger())
	defer Init(DefaultConfig())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Trace", func() { Trace().Msg("trace msg") }, "trace"},
		{"Debug", func() { Debug().Msg("debug msg") }, "debug"},
		{"Info", func() { Info().Msg("info msg") }, "info"},
		{"Warn", func() { Warn().Msg("warn msg") }, "warn"},
		{"Error", func() { Error().Msg("error msg") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()
			output := buf.String()
			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %q in output: %s", tt.level, output)
			}
		})
	}
}

func TestSetLevelString(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetLevelString("error")
	if GetLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %v", GetLevel())
	}

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(DefaultConfig())

	Info().Msg("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed at error level, got: %s", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "info",
		Format: "console",
		Output: &buf,
	})
	defer Init(DefaultConfig())

	Info().Msg("console output")

	// Console writer emits human-readable text, not JSON objects.
	output := buf.String()
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected console format, got JSON: %s", output)
	}
	if !strings.Contains(output, "console output") {
		t.Errorf("expected message in output: %s", output)
	}
}
