// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	connectionKey    contextKey = "connection"
	vendorKey        contextKey = "vendor"
	loggerKey        contextKey = "logger"
)

// GenerateCorrelationID creates a new unique correlation ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithCorrelationID returns a new context with the given correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a newly generated correlation ID.
// One correlation ID covers one fetch or declare run across every HTTP call it makes.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext retrieves the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithConnection tags the context with the configured connection name
// and its vendor.
func ContextWithConnection(ctx context.Context, connection, vendor string) context.Context {
	ctx = context.WithValue(ctx, connectionKey, connection)
	return context.WithValue(ctx, vendorKey, vendor)
}

// ConnectionFromContext returns the connection name and vendor stored by
// ContextWithConnection.
func ConnectionFromContext(ctx context.Context) (connection, vendor string) {
	connection, _ = ctx.Value(connectionKey).(string)
	vendor, _ = ctx.Value(vendorKey).(string)
	return connection, vendor
}

// ContextWithLogger stores a logger in the context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves a logger from context.
// Returns the global logger if no logger is stored in context.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns a logger with context values (correlation_id, connection, vendor) added.
//
//	logging.Ctx(ctx).Info().Msg("Fetch complete")
//	// {"level":"info","correlation_id":"abc12345","connection":"main","vendor":"dice","message":"Fetch complete"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder with context values pre-populated.
func CtxWith(ctx context.Context) zerolog.Context {
	logger := LoggerFromContext(ctx)
	logCtx := logger.With()

	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}
	connection, vendor := ConnectionFromContext(ctx)
	if connection != "" {
		logCtx = logCtx.Str("connection", connection)
	}
	if vendor != "" {
		logCtx = logCtx.Str("vendor", vendor)
	}

	return logCtx
}

// WithComponent creates a child logger with a component field.
//
//	log := logging.WithComponent("snapshot")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
