package authclient

import (
	"context"
	"net/url"

	goerrors "github.com/goliatone/go-errors"
)

// OAuthCallback is the parsed result of the provider redirect back to the
// application: either a token or a provider error, never both.
type OAuthCallback struct {
	Token string
	Err   string
}

// ParseOAuthCallback reads the redirect target the backend sends the browser
// to: /oauth/callback?token=... on success, ?error=... on failure.
func ParseOAuthCallback(rawURL string) (*OAuthCallback, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid callback URL")
	}

	query := u.Query()

	if provErr := query.Get("error"); provErr != "" {
		return &OAuthCallback{Err: provErr}, nil
	}

	token := query.Get("token")
	if token == "" {
		return nil, goerrors.New("callback carries neither token nor error", goerrors.CategoryBadInput)
	}

	return &OAuthCallback{Token: token}, nil
}

// CompleteOAuthLogin consumes a callback URL end to end: parse, reject
// provider errors, then adopt the token through the state machine (which
// validates expiry, persists, and fetches the profile).
func CompleteOAuthLogin(ctx context.Context, machine *SessionStateMachine, rawURL string) error {
	callback, err := ParseOAuthCallback(rawURL)
	if err != nil {
		return err
	}

	if callback.Err != "" {
		return goerrors.New("oauth login failed", goerrors.CategoryAuth).
			WithMetadata(map[string]any{"provider_error": callback.Err})
	}

	return machine.AdoptToken(ctx, callback.Token)
}
