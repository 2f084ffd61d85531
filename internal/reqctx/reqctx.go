// Package reqctx carries per-request values (request ID, authenticated
// username) through context.Context so the logger can pick them up.
package reqctx

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestIDKey struct{}
	actorKey     struct{}
)

// NewRequestID generates a random UUID v4 request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// ValidRequestID reports whether an incoming X-Request-ID is safe to echo
// back and log. Only UUIDs are accepted.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns "" if absent.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithActor attaches the username a bearer token resolved to.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

func Actor(ctx context.Context) string {
	u, _ := ctx.Value(actorKey{}).(string)
	return u
}
