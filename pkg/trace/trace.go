package trace

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
)

type ctxKey struct{}

// HeaderName is the HTTP header carrying the request trace id.
const HeaderName = "X-Trace-ID"

// GenerateTraceID returns a random 128-bit id as 32 hex chars.
func GenerateTraceID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// FromContext returns the trace id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext stores traceID in ctx.
func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}
