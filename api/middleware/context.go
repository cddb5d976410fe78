package middleware

import "context"

type contextKey string

const (
	ctxSessionID     contextKey = "session_id"
	ctxSessionMinted contextKey = "session_minted"
)

// SessionIDFromContext returns the cart session resolved by Session.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// SessionMinted reports whether Session generated the id because the client
// sent none (or an invalid one).
func SessionMinted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	minted, _ := ctx.Value(ctxSessionMinted).(bool)
	return minted
}

func withSessionMinted(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxSessionMinted, true)
}
