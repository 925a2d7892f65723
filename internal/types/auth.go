package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SignupRequest represents the request to create a new account.
type SignupRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpw"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role,omitempty" validate:"omitempty,oneof=talent recruiter"`
}

// LoginRequest represents the login request. PSID is accepted in place of email.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	PSID     string `json:"psid"`
	Password string `json:"password" validate:"required"`
}

// Key returns the lower-cased account key the login refers to.
func (r *LoginRequest) Key() string {
	if r.Email != "" {
		return strings.ToLower(strings.TrimSpace(r.Email))
	}
	return strings.ToLower(strings.TrimSpace(r.PSID))
}

// User represents an account for API responses; the password hash never leaves the db package.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the issued token and the user it belongs to.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// SignupResponse is returned after a successful registration.
type SignupResponse struct {
	OK   bool  `json:"ok"`
	User *User `json:"user"`
}

// NewValidator returns a validator with the custom tags used by request types.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return v
}

// IsStrongPassword reports whether pw has 8+ characters, a digit and a non-alphanumeric character.
func IsStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var digit, special bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		default:
			special = true
		}
	}
	return digit && special
}

// Validate validates the SignupRequest using the validator.
func (r *SignupRequest) Validate() error {
	return NewValidator().Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return NewValidator().Struct(r)
}
