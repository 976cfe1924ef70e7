package logging

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID returns a context carrying the request ID. SlogLogger adds
// it to every record logged with that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
