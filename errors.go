package authclient

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenExpired      = "AUTH_TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "AUTH_TOKEN_MALFORMED"
	TextCodeTokenNotFound     = "AUTH_TOKEN_NOT_FOUND"
	TextCodeNetworkError      = "AUTH_NETWORK_ERROR"
	TextCodeGatewayError      = "AUTH_GATEWAY_ERROR"
	TextCodeInvalidTransition = "INVALID_SESSION_TRANSITION"
	TextCodeStaleAttempt      = "AUTH_STALE_ATTEMPT"
)

// genericNetworkMessage is what users see for any transport failure; the
// underlying error stays in the wrapped source and never reaches the UI.
const genericNetworkMessage = "network error"

// ErrTokenExpired marks a structurally valid token whose exp claim is in the
// past. It is handled silently (clear + anonymous), never shown to users.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed marks a token that could not be parsed at all.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNoToken is returned by token stores when nothing is persisted, or when
// the persisted entry has outlived its TTL.
var ErrNoToken = errors.New("no stored token", errors.CategoryNotFound).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(errors.CodeNotFound)

// ErrNetwork is the normalized transport failure.
var ErrNetwork = errors.New(genericNetworkMessage, errors.CategoryOperation).
	WithTextCode(TextCodeNetworkError).
	WithCode(errors.CodeInternal)

// ErrInvalidTransition is returned when a session operation is requested from
// a status that does not permit it.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryConflict).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(errors.CodeConflict)

// ErrStaleAttempt marks a gateway response that arrived after its login
// attempt was superseded. Applying it is a no-op.
var ErrStaleAttempt = errors.New("login attempt superseded", errors.CategoryConflict).
	WithTextCode(TextCodeStaleAttempt).
	WithCode(errors.CodeConflict)

// NewGatewayError wraps a non-2xx backend response. The message is surfaced
// verbatim to the caller, the HTTP status travels as metadata.
func NewGatewayError(status int, message string) *errors.Error {
	return errors.New(message, errors.CategoryOperation).
		WithTextCode(TextCodeGatewayError).
		WithCode(status).
		WithMetadata(map[string]any{"status": status})
}

// NewNetworkError normalizes a transport failure to the generic message while
// keeping the source error for logs.
func NewNetworkError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryOperation, genericNetworkMessage).
		WithTextCode(TextCodeNetworkError).
		WithCode(errors.CodeInternal)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsNetworkError reports whether err is a normalized transport failure.
func IsNetworkError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeNetworkError
}

// IsGatewayError reports whether err carries a backend rejection message.
func IsGatewayError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeGatewayError
}

// UserMessage extracts the text safe to show in a form: gateway messages come
// back verbatim, everything else collapses to its rich error message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.Message
	}
	return err.Error()
}
