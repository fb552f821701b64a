package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextIdentityKey  ctxKey = "identity"
	ContextRequestIDKey ctxKey = "requestID"
)

// Identity is the caller resolved by the session layer.
type Identity struct {
	CompanyID string `json:"company_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
}

func (i Identity) IsZero() bool {
	return i.CompanyID == "" || i.UserID == ""
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(ContextIdentityKey).(Identity)
	if !ok || identity.IsZero() {
		return Identity{}, false
	}
	return identity, true
}

func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, identity)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(ContextRequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextRequestIDKey, requestID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
