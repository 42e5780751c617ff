package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextTraceIDKey ctxKey = "traceID"
	ContextActorKey   ctxKey = "actorID"
)

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(ContextTraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ContextTraceIDKey, traceID)
}

// ActorIDFromContext returns the user id of whoever triggered the request, 0 for system jobs.
func ActorIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(ContextActorKey).(int64); ok {
		return id
	}
	return 0
}

func ContextWithActorID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextActorKey, userID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
