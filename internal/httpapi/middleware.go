package httpapi

import (
	"github.com/go-mizu/mizu"

	"github.com/weaveform/weave/internal/trace"
)

// RequestID stamps every request with a fresh trace id before the
// handler runs, grounded on blueprints/githome's RequireAuth middleware
// shape (context.WithValue then *c.Request() = *c.Request().WithContext(ctx)).
func RequestID() mizu.Middleware {
	return func(next mizu.Handler) mizu.Handler {
		return func(c *mizu.Ctx) error {
			ctx := trace.WithRequestID(c.Context(), trace.NewRequestID())
			*c.Request() = *c.Request().WithContext(ctx)
			return next(c)
		}
	}
}
