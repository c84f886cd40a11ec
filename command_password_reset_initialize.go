package authclient

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// PasswordResetInitializeMessage starts the forgot-password flow. The
// backend mails a reset link; the recaptcha token gates abuse.
type PasswordResetInitializeMessage struct {
	Email          string `json:"email"`
	RecaptchaToken string `json:"recaptchaToken"`
}

func (e PasswordResetInitializeMessage) Type() string { return "user.password_reset_initialize" }

// Validate runs the client-side rules.
func (e PasswordResetInitializeMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.RecaptchaToken, validation.Required),
	)
}

// PasswordResetInitializeHandler submits reset requests to the backend.
type PasswordResetInitializeHandler struct {
	gateway Gateway
}

// NewPasswordResetInitializeHandler wires the handler to a gateway.
func NewPasswordResetInitializeHandler(gateway Gateway) *PasswordResetInitializeHandler {
	return &PasswordResetInitializeHandler{gateway: gateway}
}

func (h *PasswordResetInitializeHandler) Execute(ctx context.Context, event PasswordResetInitializeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset request")
	}

	if err := h.gateway.ForgotPassword(ctx, event.Email, event.RecaptchaToken); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "password reset request failed")
	}

	return nil
}
