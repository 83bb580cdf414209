package http

import (
	"context"
	"log/slog"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
	"github.com/jmgilet-svg/LOCATION-sub000/internal/logging"
)

type contextKey string

const (
	scopeContextKey      contextKey = "scope"
	bookingIDContextKey  contextKey = "booking_id"
	resourceIDContextKey contextKey = "resource_id"
	entryIDContextKey    contextKey = "entry_id"
)

// ContextWithScope returns a derived context carrying the agency scope
// resolved by the middleware.
func ContextWithScope(ctx context.Context, scope application.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey, scope)
}

// ScopeFromContext extracts the agency scope from context if available.
func ScopeFromContext(ctx context.Context) (application.Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey).(application.Scope)
	return scope, ok
}

// ContextWithBookingID injects the booking identifier resolved from the request path.
func ContextWithBookingID(ctx context.Context, bookingID string) context.Context {
	return context.WithValue(ctx, bookingIDContextKey, bookingID)
}

// BookingIDFromContext extracts a booking identifier previously associated with the context.
func BookingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(bookingIDContextKey).(string)
	return id, ok
}

// ContextWithResourceID injects the resource identifier resolved from the request path.
func ContextWithResourceID(ctx context.Context, resourceID string) context.Context {
	return context.WithValue(ctx, resourceIDContextKey, resourceID)
}

// ResourceIDFromContext extracts a resource identifier previously associated with the context.
func ResourceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(resourceIDContextKey).(string)
	return id, ok
}

// ContextWithEntryID injects a span or rule identifier resolved from the request path.
func ContextWithEntryID(ctx context.Context, entryID string) context.Context {
	return context.WithValue(ctx, entryIDContextKey, entryID)
}

// EntryIDFromContext extracts a span or rule identifier previously associated with the context.
func EntryIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(entryIDContextKey).(string)
	return id, ok
}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
