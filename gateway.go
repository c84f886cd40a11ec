package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultGatewayTimeout bounds every backend call. No retries; a slow
// backend surfaces as a network error rather than a hung login form.
const DefaultGatewayTimeout = 10 * time.Second

// HTTPGateway talks to the backend session endpoints over REST. Non-2xx
// responses carrying a {message} body surface that message verbatim;
// transport failures are normalized so callers never see net/http internals.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

// GatewayOption customizes HTTPGateway construction.
type GatewayOption func(*HTTPGateway)

// WithGatewayHTTPClient swaps the underlying client (custom transport, test doubles).
func WithGatewayHTTPClient(client *http.Client) GatewayOption {
	return func(g *HTTPGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithGatewayLogger overrides the default logger.
func WithGatewayLogger(logger Logger) GatewayOption {
	return func(g *HTTPGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewHTTPGateway returns a gateway rooted at baseURL, e.g. "http://localhost:8080/api".
func NewHTTPGateway(baseURL string, opts ...GatewayOption) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultGatewayTimeout},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

var _ Gateway = (*HTTPGateway)(nil)

// loginEnvelope is the union shape the login endpoint answers with. On plain
// success the profile fields ride alongside the token in the same body.
type loginEnvelope struct {
	Token             string `json:"token"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	UserProfile
}

func (g *HTTPGateway) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var envelope loginEnvelope
	if err := g.doJSON(ctx, http.MethodPost, "/auth/login", "", creds, &envelope, "Login failed"); err != nil {
		return nil, err
	}

	if envelope.RequiresTwoFactor {
		return &LoginResponse{RequiresTwoFactor: true}, nil
	}

	profile := envelope.UserProfile
	return &LoginResponse{
		Token: envelope.Token,
		User:  &profile,
	}, nil
}

func (g *HTTPGateway) CurrentUser(ctx context.Context, token string) (*UserProfile, error) {
	user := &UserProfile{}
	if err := g.doJSON(ctx, http.MethodGet, "/auth/me", token, nil, user, "Session rejected"); err != nil {
		return nil, err
	}
	return user, nil
}

func (g *HTTPGateway) SetupTwoFactor(ctx context.Context, token string) (*TwoFactorSetup, error) {
	setup := &TwoFactorSetup{}
	if err := g.doJSON(ctx, http.MethodPost, "/auth/2fa/setup", token, nil, setup, "2FA setup failed"); err != nil {
		return nil, err
	}
	return setup, nil
}

func (g *HTTPGateway) VerifyTwoFactor(ctx context.Context, token, code string) error {
	payload, err := twoFactorCodePayload(code)
	if err != nil {
		return err
	}
	return g.doJSON(ctx, http.MethodPost, "/auth/2fa/verify", token, payload, nil, "2FA verification failed")
}

func (g *HTTPGateway) DisableTwoFactor(ctx context.Context, token, code string) error {
	payload, err := twoFactorCodePayload(code)
	if err != nil {
		return err
	}
	return g.doJSON(ctx, http.MethodPost, "/auth/2fa/disable", token, payload, nil, "2FA disable failed")
}

// twoFactorCodePayload matches the backend contract: the code travels as a
// number, not a string.
func twoFactorCodePayload(code string) (map[string]int, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid two-factor code")
	}
	return map[string]int{"code": n}, nil
}

func (g *HTTPGateway) Register(ctx context.Context, payload RegisterUserMessage) error {
	return g.doJSON(ctx, http.MethodPost, "/users/register", "", payload, nil, "Registration failed")
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, email, recaptchaToken string) error {
	payload := map[string]string{
		"email":          email,
		"recaptchaToken": recaptchaToken,
	}
	return g.doJSON(ctx, http.MethodPost, "/users/forgot-password", "", payload, nil, "Password reset request failed")
}

func (g *HTTPGateway) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	payload := map[string]string{
		"token":           resetToken,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	}
	return g.doJSON(ctx, http.MethodPost, "/users/reset-password", "", payload, nil, "Password reset failed")
}

// doJSON runs a single request/response cycle. fallback is the user-facing
// message when the backend rejects without a message of its own.
func (g *HTTPGateway) doJSON(ctx context.Context, method, path, token string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not build request")
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("gateway transport failure %s %s: %v", method, path, err)
		return NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.rejectionError(resp, fallback)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		g.logger.Error("gateway response decode failure %s: %v", path, err)
		return NewGatewayError(resp.StatusCode, fallback)
	}

	return nil
}

// rejectionError turns a non-2xx response into a gateway error, preferring
// the backend's own {message} when present.
func (g *HTTPGateway) rejectionError(resp *http.Response, fallback string) error {
	message := fallback

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil && payload.Message != "" {
		message = payload.Message
	}

	g.logger.Info("gateway rejected request status=%d message=%s", resp.StatusCode, message)

	return NewGatewayError(resp.StatusCode, message)
}

// AuthorizeURL builds the external OAuth authorization endpoint for a
// provider, e.g. AuthorizeURL("http://localhost:8080", "google").
func AuthorizeURL(origin, provider string) string {
	return fmt.Sprintf("%s/oauth2/authorization/%s", strings.TrimRight(origin, "/"), provider)
}
