package authclient

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// CookieTokenStore keeps the token in an origin-scoped cookie for browser
// sessions. It is bound to a single request context; construct one per
// request when serving browser navigations through go-router.
type CookieTokenStore struct {
	ctx  router.Context
	name string
	ttl  time.Duration
}

// NewCookieTokenStore binds a store to a request context. An empty name uses
// DefaultTokenCookieName.
func NewCookieTokenStore(ctx router.Context, name string) *CookieTokenStore {
	if name == "" {
		name = DefaultTokenCookieName
	}
	return &CookieTokenStore{ctx: ctx, name: name, ttl: DefaultTokenTTL}
}

var _ TokenStore = (*CookieTokenStore)(nil)

func (s *CookieTokenStore) Save(token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.ctx.Cookie(&router.Cookie{
		Name:     s.name,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
	return nil
}

func (s *CookieTokenStore) Read() (string, error) {
	token := s.ctx.Cookies(s.name)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *CookieTokenStore) Clear() error {
	s.ctx.Cookie(&router.Cookie{
		Name:     s.name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
	return nil
}

// StateProvider yields the current session snapshot for guard decisions.
type StateProvider func() AuthState

// HTTPRouteGuard applies RouteGuard decisions to go-router navigations:
// redirects carry the originally requested path in a short-lived cookie so
// the login flow can send the user back where they came from.
type HTTPRouteGuard struct {
	guard            *RouteGuard
	state            StateProvider
	rejectedRouteKey string
	loadingView      string
	Logger           Logger
}

// NewHTTPRouteGuard wires a pure guard to a session snapshot source.
func NewHTTPRouteGuard(guard *RouteGuard, state StateProvider, cfg Config) *HTTPRouteGuard {
	key := DefaultRejectedRouteKey
	if cfg != nil {
		key = cfg.GetRejectedRouteKey()
	}

	return &HTTPRouteGuard{
		guard:            guard,
		state:            state,
		rejectedRouteKey: key,
		loadingView:      "loading",
		Logger:           defLogger{},
	}
}

// WithLoadingView overrides the view rendered while the session resolves.
func (g *HTTPRouteGuard) WithLoadingView(view string) *HTTPRouteGuard {
	if view != "" {
		g.loadingView = view
	}
	return g
}

// Protect returns middleware enforcing the given requirement on a route.
func (g *HTTPRouteGuard) Protect(req RouteRequirement) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			decision := g.guard.Evaluate(req, g.state(), ctx.OriginalURL())

			switch decision.Kind {
			case DecisionAllow:
				return hf(ctx)
			case DecisionShowLoading:
				return ctx.Render(g.loadingView, router.ViewContext{})
			default:
				return g.redirect(ctx, decision)
			}
		}
	}
}

// Protected is shorthand for routes that only need a logged-in session.
func (g *HTTPRouteGuard) Protected() router.MiddlewareFunc {
	return g.Protect(RouteRequirement{RequiresAuth: true})
}

// AdminOnly is shorthand for routes restricted to ADMIN accounts.
func (g *HTTPRouteGuard) AdminOnly() router.MiddlewareFunc {
	return g.Protect(RouteRequirement{RequiresAuth: true, RequiresAdmin: true})
}

func (g *HTTPRouteGuard) redirect(ctx router.Context, decision Decision) error {
	if decision.From != "" {
		g.SetRedirect(ctx, decision.From)
	}

	statusCode := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}

	g.Logger.Info("Route guard redirecting",
		"path", decision.Path,
		"from", decision.From,
	)

	return ctx.Redirect(decision.Path, statusCode)
}

// SetRedirect remembers the rejected route so the caller can return there
// after logging in.
func (g *HTTPRouteGuard) SetRedirect(ctx router.Context, path string) {
	ctx.Cookie(&router.Cookie{
		Name:     g.rejectedRouteKey,
		Value:    path,
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect pops the remembered route, falling back to def.
func (g *HTTPRouteGuard) GetRedirect(ctx router.Context, def string) string {
	r := ctx.Cookies(g.rejectedRouteKey)
	if r == "" {
		return def
	}

	ctx.Cookie(&router.Cookie{
		Name:     g.rejectedRouteKey,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
	return r
}

// ErrorHandler logs a rich error and renders the shared error view. Auth
// category errors bounce through the login redirect instead.
func (g *HTTPRouteGuard) ErrorHandler(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected error occurred").
			WithCode(errors.CodeInternal)
	}

	g.Logger.Info(
		"Guard error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		g.SetRedirect(ctx, ctx.OriginalURL())
		return ctx.Redirect(g.guard.LoginPath, http.StatusSeeOther)
	default:
		return ctx.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}
