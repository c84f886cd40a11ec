package authclient_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	authclient "github.com/goliatone/go-authclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := testProfile()
	ctx := authclient.WithContext(context.Background(), user)

	found, ok := authclient.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, user, found)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := authclient.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &authclient.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		UserRole:         authclient.RoleAdmin,
	}
	ctx := authclient.WithClaimsContext(context.Background(), claims)

	found, ok := authclient.GetClaims(ctx)
	require.True(t, ok)
	assert.Same(t, claims, found)
}

func TestIsAdminContext(t *testing.T) {
	t.Run("admin user", func(t *testing.T) {
		user := testProfile()
		user.Role = authclient.RoleAdmin
		ctx := authclient.WithContext(context.Background(), user)

		assert.True(t, authclient.IsAdminContext(ctx))
	})

	t.Run("regular user", func(t *testing.T) {
		ctx := authclient.WithContext(context.Background(), testProfile())
		assert.False(t, authclient.IsAdminContext(ctx))
	})

	t.Run("falls back to claims", func(t *testing.T) {
		claims := &authclient.SessionClaims{UserRole: authclient.RoleAdmin}
		ctx := authclient.WithClaimsContext(context.Background(), claims)

		assert.True(t, authclient.IsAdminContext(ctx))
	})

	t.Run("empty context", func(t *testing.T) {
		assert.False(t, authclient.IsAdminContext(context.Background()))
	})
}
