package authclient

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UserProfile is the backend's view of the authenticated account. It is
// replaced wholesale on refresh; only TwoFactorEnabled flips in place after a
// 2FA enable/disable round-trip.
type UserProfile struct {
	ID               int64  `json:"id,omitempty"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Email            string `json:"email,omitempty"`
	Role             Role   `json:"role,omitempty"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled,omitempty"`
}

// Clone returns an independent copy so snapshots never alias machine state.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// Credentials is the login payload. TwoFactorCode is set only on the
// verification leg of a 2FA challenge.
type Credentials struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
}

// Validate will run validation rules
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(
			&c.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&c.Password,
			validation.Required,
		),
	)
}

// ValidateTwoFactorCode rejects anything that is not a six digit TOTP-style
// code before it ever reaches the gateway.
func ValidateTwoFactorCode(code string) error {
	return validation.Validate(code,
		validation.Required,
		validation.Length(6, 6),
		is.Digit,
	)
}

// LoginResponse is the gateway's answer to a login call. Exactly one of the
// three shapes applies: a token (with the profile riding along), a pending
// two-factor challenge, or an error returned separately.
type LoginResponse struct {
	Token             string       `json:"token,omitempty"`
	RequiresTwoFactor bool         `json:"requiresTwoFactor,omitempty"`
	User              *UserProfile `json:"user,omitempty"`
}

// LoginResult is what the state machine hands back to callers.
type LoginResult struct {
	RequiresTwoFactor bool
	Token             string
	User              *UserProfile
}

// TwoFactorSetup carries the enrollment material issued by the backend.
type TwoFactorSetup struct {
	QRCodeDataURL string   `json:"qrCodeDataUrl"`
	SecretKey     string   `json:"secretKey"`
	BackupCodes   []string `json:"backupCodes"`
}
