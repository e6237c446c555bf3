// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contextKey is the private type for logging context keys.
type contextKey string

const (
	// requestIDKey carries the HTTP request ID assigned by middleware.
	requestIDKey contextKey = "request_id"

	// buildIDKey carries the pipeline build ID for offline stages, so every
	// log line of an extract/aggregate/load/validate run correlates to one
	// build record.
	buildIDKey contextKey = "build_id"

	// loggerKey carries a pre-configured logger instance.
	loggerKey contextKey = "logger"
)

// GenerateRequestID creates a new unique request ID (full UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithBuildID returns a new context carrying the given pipeline
// build ID.
//
//	ctx = logging.ContextWithBuildID(ctx, build.ID)
func ContextWithBuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, buildIDKey, id)
}

// BuildIDFromContext retrieves the pipeline build ID, or "" if absent.
func BuildIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(buildIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithLogger stores a logger in the context, typically done once by
// middleware or a pipeline runner.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves a logger from context, falling back to the
// global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns a logger with request_id and build_id automatically attached
// when present. This is the recommended way to log inside handlers and
// pipeline stages.
//
//	logging.Ctx(ctx).Info().Int("edges", n).Msg("Partition extracted")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder with the correlation fields
// pre-populated, for callers that add further default fields.
//
//	logger := logging.CtxWith(ctx).Str("stage", "extract").Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	logCtx := LoggerFromContext(ctx).With()

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	if buildID := BuildIDFromContext(ctx); buildID != "" {
		logCtx = logCtx.Str("build_id", buildID)
	}

	return logCtx
}

// CtxErr starts an error level message with context fields and the error.
// Shorthand for Ctx(ctx).Err(err).
func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}
