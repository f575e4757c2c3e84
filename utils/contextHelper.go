package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const contextKeyCorrelationId contextKey = "correlationId"

// SetCorrelationIdInContext attaches the request correlation id so audit rows
// written deeper in the call chain can reference it.
func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, contextKeyCorrelationId, correlationId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	cid, ok := ctx.Value(contextKeyCorrelationId).(string)
	return cid, ok
}

// CorrelationId returns the id carried by the context, or mints a fresh one
// for callers that run outside a request (cmd tools, tests).
func CorrelationId(ctx context.Context) string {
	if cid, ok := GetCorrelationIdFromContext(ctx); ok && cid != "" {
		return cid
	}
	return uuid.NewString()
}
