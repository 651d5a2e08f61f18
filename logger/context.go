package logger

import (
	"context"
	"log/slog"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	LoggerKey ContextKey = "logger"
)

// FromContext retrieves the logger from the context
// If no logger is found, it returns the default logger
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithRoundID tags the context logger with the evaluation round id
func WithRoundID(ctx context.Context, roundID string) context.Context {
	logger := FromContext(ctx)
	loggerWithRoundID := logger.With("round_id", roundID)
	return WithLogger(ctx, loggerWithRoundID)
}

// WithProjectID tags the context logger with the project under evaluation
func WithProjectID(ctx context.Context, projectID string) context.Context {
	logger := FromContext(ctx)
	loggerWithProjectID := logger.With("project_id", projectID)
	return WithLogger(ctx, loggerWithProjectID)
}
