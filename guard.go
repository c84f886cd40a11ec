package authclient

// RouteRequirement describes what a route demands from the session. Supplied
// by the caller per navigation, never persisted.
type RouteRequirement struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

// DecisionKind enumerates guard outcomes.
type DecisionKind string

const (
	// DecisionAllow lets the navigation proceed.
	DecisionAllow DecisionKind = "allow"
	// DecisionShowLoading defers the navigation while the session resolves.
	DecisionShowLoading DecisionKind = "show_loading"
	// DecisionRedirect sends the caller elsewhere (login or home).
	DecisionRedirect DecisionKind = "redirect"
)

// Decision is the guard's verdict. From carries the originally requested
// path on a login redirect so the caller can return there post-login.
type Decision struct {
	Kind DecisionKind
	Path string
	From string
}

// RouteGuard evaluates navigations against the current session snapshot.
// Evaluation is pure: same requirement and state always yield the same
// decision. The guard is a UX convenience, not a security boundary; the
// server re-checks authorization on every request.
type RouteGuard struct {
	LoginPath string
	HomePath  string
}

// NewRouteGuard applies defaults for zero-value paths.
func NewRouteGuard(loginPath, homePath string) *RouteGuard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if homePath == "" {
		homePath = DefaultHomePath
	}
	return &RouteGuard{LoginPath: loginPath, HomePath: homePath}
}

// Evaluate decides a navigation. The ordering is load-bearing: loading is
// checked first so a not-yet-resolved session is never misclassified as
// anonymous and bounced to login.
func (g *RouteGuard) Evaluate(req RouteRequirement, state AuthState, requestedPath string) Decision {
	if state.Loading {
		return Decision{Kind: DecisionShowLoading}
	}

	if req.RequiresAuth && !state.IsAuthenticated {
		return Decision{
			Kind: DecisionRedirect,
			Path: g.LoginPath,
			From: requestedPath,
		}
	}

	if req.RequiresAdmin && (state.User == nil || !IsAdmin(state.User.Role)) {
		return Decision{
			Kind: DecisionRedirect,
			Path: g.HomePath,
		}
	}

	return Decision{Kind: DecisionAllow}
}
