package authclient

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// PasswordResetFinalizeMessage completes a reset using the token from the
// emailed link.
type PasswordResetFinalizeMessage struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (e PasswordResetFinalizeMessage) Type() string { return "user.password_reset_finalize" }

// Validate runs the client-side rules; a mismatched confirmation never
// reaches the gateway.
func (e PasswordResetFinalizeMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Token, validation.Required),
		validation.Field(&e.NewPassword, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&e.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(e.NewPassword)),
		),
	)
}

// PasswordResetFinalizeHandler submits the new password to the backend.
type PasswordResetFinalizeHandler struct {
	gateway Gateway
}

// NewPasswordResetFinalizeHandler wires the handler to a gateway.
func NewPasswordResetFinalizeHandler(gateway Gateway) *PasswordResetFinalizeHandler {
	return &PasswordResetFinalizeHandler{gateway: gateway}
}

func (h *PasswordResetFinalizeHandler) Execute(ctx context.Context, event PasswordResetFinalizeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset",
		)
	default:
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password reset payload")
	}

	if strength := MeasurePasswordStrength(event.NewPassword); strength.Level == StrengthWeak {
		return goerrors.New("password is too weak", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"feedback": strength.Feedback})
	}

	if err := h.gateway.ResetPassword(ctx, event.Token, event.NewPassword, event.ConfirmPassword); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "password reset failed")
	}

	return nil
}
