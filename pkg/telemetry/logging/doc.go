// Package logging configures structured logging for the service.
//
// It wraps log/slog with level and format parsing so the rest of the
// codebase only deals with *slog.Logger values. Components derive their
// own loggers with With("component", ...) and request-scoped fields
// travel through context via the helpers in context.go.
package logging
