package authclient

import (
	"context"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the UserProfile in the given context
func WithContext(r context.Context, user *UserProfile) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*UserProfile, bool) {
	raw, ok := ctx.Value(userCtxKey).(*UserProfile)
	return raw, ok
}

// WithClaimsContext sets the SessionClaims in the given context
func WithClaimsContext(r context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the SessionClaims from the standard context
func GetClaims(ctx context.Context) (*SessionClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*SessionClaims)
	return raw, ok
}

// IsAdminContext reports whether the context's user carries the admin role.
func IsAdminContext(ctx context.Context) bool {
	if user, ok := FromContext(ctx); ok && user != nil {
		return IsAdmin(user.Role)
	}
	if claims, ok := GetClaims(ctx); ok && claims != nil {
		return IsAdmin(claims.Role())
	}
	return false
}
