package util

import (
	"context"
)

type key string

const (
	requestIDKey = key("x-request-id")
	marketKey    = key("market")
)

// WithRequestID returns a context carrying the given request id.
// A new uuid is generated when id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRequestID()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns request id from context, or an empty string.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithMarket returns a context tagged with the market symbol a command targets.
func WithMarket(ctx context.Context, market string) context.Context {
	return context.WithValue(ctx, marketKey, market)
}

// GetMarket returns the market symbol stored in ctx, if any.
func GetMarket(ctx context.Context) string {
	m, _ := ctx.Value(marketKey).(string)
	return m
}
