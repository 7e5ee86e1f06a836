// Package trace carries a per-request id through context.Context, the
// teacher's own level of ambient observability (plain generated ids
// plus slog fields, not a tracing SDK), grounded on
// blueprints/githome/app/web/handler/api/middleware.go's
// context.WithValue-based request augmentation.
package trace

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type contextKey int

const requestIDKey contextKey = 0

// NewRequestID generates a fresh, human-sortable request id.
func NewRequestID() string {
	return ulid.Make().String()
}

// WithRequestID returns a context carrying id, retrievable with RequestID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id carried by ctx, or "" if none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
