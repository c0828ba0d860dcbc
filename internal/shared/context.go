package shared

import "context"

// Identity describes the resolved session for the current request: the user
// re-fetched from storage together with their live role names. It is rebuilt
// on every request and never cached.
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Roles  []string
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the resolved identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
