package authclient

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Status is a session lifecycle state
type Status string

const (
	// StatusBootstrapping is the initial state while a persisted token is
	// being resurrected.
	StatusBootstrapping Status = "bootstrapping"
	// StatusAnonymous means no session exists.
	StatusAnonymous Status = "anonymous"
	// StatusLoggingIn covers an in-flight credentials call.
	StatusLoggingIn Status = "logging_in"
	// StatusAwaitingTwoFactor means the backend demanded a second factor.
	StatusAwaitingTwoFactor Status = "awaiting_two_factor"
	// StatusVerifyingTwoFactor covers an in-flight 2FA verification call.
	StatusVerifyingTwoFactor Status = "verifying_two_factor"
	// StatusAuthenticated means the session holds a token and a profile.
	StatusAuthenticated Status = "authenticated"
)

// AuthState is a point-in-time snapshot of the session. It is only ever
// produced by SessionStateMachine; consumers never mutate it.
type AuthState struct {
	Status            Status
	IsAuthenticated   bool
	User              *UserProfile
	Token             string
	Loading           bool
	TwoFactorRequired bool
}

// Validate checks the structural invariants every reachable state must hold.
func (s AuthState) Validate() error {
	if s.IsAuthenticated && (s.Token == "" || s.User == nil) {
		return goerrors.New(
			"authenticated session must hold both token and user",
			goerrors.CategoryInternal,
		).WithMetadata(map[string]any{"status": string(s.Status)})
	}

	if s.TwoFactorRequired && s.IsAuthenticated {
		return goerrors.New(
			"pending two-factor challenge cannot coexist with a completed login",
			goerrors.CategoryInternal,
		).WithMetadata(map[string]any{"status": string(s.Status)})
	}

	if s.Loading {
		switch s.Status {
		case StatusBootstrapping, StatusLoggingIn, StatusVerifyingTwoFactor:
		default:
			return goerrors.New(
				"loading is only legal during bootstrap, login, or 2FA verification",
				goerrors.CategoryInternal,
			).WithMetadata(map[string]any{"status": string(s.Status)})
		}
	}

	return nil
}

func (s AuthState) String() string {
	user := "<nil>"
	if s.User != nil {
		user = s.User.Email
	}
	return fmt.Sprintf(
		"status=%s authenticated=%t user=%s loading=%t 2fa_pending=%t",
		s.Status,
		s.IsAuthenticated,
		user,
		s.Loading,
		s.TwoFactorRequired,
	)
}
