package authclient

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// RegisterUserMessage is the registration payload the backend expects.
// RecaptchaToken comes from the captcha widget on the registration form.
type RegisterUserMessage struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	RecaptchaToken       string `json:"recaptchaToken"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate runs the client-side rules; failures never reach the gateway.
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&e.PasswordConfirmation,
			validation.Required,
			validation.By(ValidateStringEquals(e.Password)),
		),
		validation.Field(&e.RecaptchaToken, validation.Required),
	)
}

// RegisterUserHandler submits registrations to the backend.
type RegisterUserHandler struct {
	gateway Gateway
}

// NewRegisterUserHandler wires the handler to a gateway.
func NewRegisterUserHandler(gateway Gateway) *RegisterUserHandler {
	return &RegisterUserHandler{gateway: gateway}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	if strength := MeasurePasswordStrength(event.Password); strength.Level == StrengthWeak {
		return goerrors.New("password is too weak", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"feedback": strength.Feedback})
	}

	if err := h.gateway.Register(ctx, event); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryOperation, "user registration failed")
	}

	return nil
}

// ValidateStringEquals builds an ozzo rule asserting equality with str.
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}
