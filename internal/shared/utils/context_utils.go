package utils

import (
	"context"

	"job-portal/internal/shared/contextkeys"
)

// WithUserEmail records the session email on ctx.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextkeys.UserEmailKey, email)
}

// WithRequestID records the request id on ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithOperation tags ctx with the operation name logged alongside it.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// UserEmail returns the session email, if one was recorded and is non-empty.
func UserEmail(ctx context.Context) (string, bool) {
	return stringValue(ctx, contextkeys.UserEmailKey)
}

// RequestID returns the request id, if one was recorded and is non-empty.
func RequestID(ctx context.Context) (string, bool) {
	return stringValue(ctx, contextkeys.RequestIDKey)
}

func stringValue(ctx context.Context, key interface{}) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(key).(string)
	return s, ok && s != ""
}
