package authclient

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore persists the session's bearer token. Stores do no validation;
// the state machine is the only writer so memory and persistence stay in sync.
type TokenStore interface {
	Save(token string, ttl time.Duration) error
	Read() (string, error)
	Clear() error
}

// Gateway is the backend session collaborator. It issues tokens, verifies
// two-factor codes, and serves the current user profile. The client never
// implements any of this logic locally.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
	CurrentUser(ctx context.Context, token string) (*UserProfile, error)
	SetupTwoFactor(ctx context.Context, token string) (*TwoFactorSetup, error)
	VerifyTwoFactor(ctx context.Context, token, code string) error
	DisableTwoFactor(ctx context.Context, token, code string) error
	Register(ctx context.Context, payload RegisterUserMessage) error
	ForgotPassword(ctx context.Context, email, recaptchaToken string) error
	ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error
}

// TokenSource supplies the Authorization header value for authenticated
// calls. SessionStateMachine implements it.
type TokenSource interface {
	AuthHeader() (string, bool)
}

// Config holds session client options
type Config interface {
	GetTokenCookieName() string
	GetTokenTTL() time.Duration
	GetLoginPath() string
	GetHomePath() string
	GetRejectedRouteKey() string
}

// SimpleConfig is a literal Config for callers that do not bring their own.
type SimpleConfig struct {
	TokenCookieName  string
	TokenTTL         time.Duration
	LoginPath        string
	HomePath         string
	RejectedRouteKey string
}

func (c SimpleConfig) GetTokenCookieName() string {
	if c.TokenCookieName == "" {
		return DefaultTokenCookieName
	}
	return c.TokenCookieName
}

func (c SimpleConfig) GetTokenTTL() time.Duration {
	if c.TokenTTL <= 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

func (c SimpleConfig) GetLoginPath() string {
	if c.LoginPath == "" {
		return DefaultLoginPath
	}
	return c.LoginPath
}

func (c SimpleConfig) GetHomePath() string {
	if c.HomePath == "" {
		return DefaultHomePath
	}
	return c.HomePath
}

func (c SimpleConfig) GetRejectedRouteKey() string {
	if c.RejectedRouteKey == "" {
		return DefaultRejectedRouteKey
	}
	return c.RejectedRouteKey
}

const (
	// DefaultTokenCookieName is the cookie browser sessions read and write.
	DefaultTokenCookieName = "auth_token"
	// DefaultTokenTTL is the persisted token expiry: one day.
	DefaultTokenTTL = 24 * time.Hour

	DefaultLoginPath        = "/user/login"
	DefaultHomePath         = "/"
	DefaultRejectedRouteKey = "rejected_route"
)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
