package identity

import "context"

type contextKey string

const claimsKey contextKey = "session_claims"

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// UserFromContext returns the claims Protect attached to the request.
func UserFromContext(ctx context.Context) (*Claims, error) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	if !ok || c == nil {
		return nil, ErrUnauthenticated
	}

	return c, nil
}
