package authclient_test

import (
	"testing"

	authclient "github.com/goliatone/go-authclient"
	"github.com/stretchr/testify/assert"
)

func TestRouteGuardAllowsPublicRoutes(t *testing.T) {
	guard := authclient.NewRouteGuard("", "")

	decision := guard.Evaluate(
		authclient.RouteRequirement{},
		authclient.AuthState{Status: authclient.StatusAnonymous},
		"/about",
	)

	assert.Equal(t, authclient.DecisionAllow, decision.Kind)
}

func TestRouteGuardDefersWhileLoading(t *testing.T) {
	guard := authclient.NewRouteGuard("", "")

	// Loading wins over everything else: an unresolved session must never
	// be bounced to login.
	decision := guard.Evaluate(
		authclient.RouteRequirement{RequiresAuth: true, RequiresAdmin: true},
		authclient.AuthState{Status: authclient.StatusBootstrapping, Loading: true},
		"/admin/users",
	)

	assert.Equal(t, authclient.DecisionShowLoading, decision.Kind)
	assert.Empty(t, decision.Path)
}

func TestRouteGuardRedirectsAnonymousToLogin(t *testing.T) {
	guard := authclient.NewRouteGuard("/user/login", "/")

	decision := guard.Evaluate(
		authclient.RouteRequirement{RequiresAuth: true},
		authclient.AuthState{Status: authclient.StatusAnonymous},
		"/secrets",
	)

	assert.Equal(t, authclient.DecisionRedirect, decision.Kind)
	assert.Equal(t, "/user/login", decision.Path)
	assert.Equal(t, "/secrets", decision.From)
}

func TestRouteGuardRedirectsNonAdminHome(t *testing.T) {
	guard := authclient.NewRouteGuard("/user/login", "/")
	state := authclient.AuthState{
		Status:          authclient.StatusAuthenticated,
		IsAuthenticated: true,
		Token:           "token",
		User:            &authclient.UserProfile{Email: "ada@example.com", Role: authclient.RoleUser},
	}

	decision := guard.Evaluate(
		authclient.RouteRequirement{RequiresAuth: true, RequiresAdmin: true},
		state,
		"/admin/users",
	)

	assert.Equal(t, authclient.DecisionRedirect, decision.Kind)
	assert.Equal(t, "/", decision.Path)
	// The home redirect carries no return path; the user was not asked to
	// log in, they were told no.
	assert.Empty(t, decision.From)
}

func TestRouteGuardAllowsAdmin(t *testing.T) {
	guard := authclient.NewRouteGuard("", "")
	state := authclient.AuthState{
		Status:          authclient.StatusAuthenticated,
		IsAuthenticated: true,
		Token:           "token",
		User:            &authclient.UserProfile{Email: "root@example.com", Role: authclient.RoleAdmin},
	}

	decision := guard.Evaluate(
		authclient.RouteRequirement{RequiresAuth: true, RequiresAdmin: true},
		state,
		"/admin/users",
	)

	assert.Equal(t, authclient.DecisionAllow, decision.Kind)
}

func TestRouteGuardAdminCheckBeforeProfileLoads(t *testing.T) {
	guard := authclient.NewRouteGuard("", "/home")

	// Authenticated but with no profile attached yet counts as non-admin.
	state := authclient.AuthState{
		Status:          authclient.StatusAuthenticated,
		IsAuthenticated: true,
		Token:           "token",
	}

	decision := guard.Evaluate(
		authclient.RouteRequirement{RequiresAdmin: true},
		state,
		"/admin",
	)

	assert.Equal(t, authclient.DecisionRedirect, decision.Kind)
	assert.Equal(t, "/home", decision.Path)
}

func TestRouteGuardIsPure(t *testing.T) {
	guard := authclient.NewRouteGuard("", "")
	req := authclient.RouteRequirement{RequiresAuth: true}
	state := authclient.AuthState{Status: authclient.StatusAnonymous}

	first := guard.Evaluate(req, state, "/secrets")
	second := guard.Evaluate(req, state, "/secrets")

	assert.Equal(t, first, second)
}
