package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// SessionStateResponse reports the local session belief.
type SessionStateResponse struct {
	LocallyComplete bool     `json:"locally_complete"`
	Missing         []string `json:"missing"`
}

// CredentialResponse describes the credential the next call would carry.
type CredentialResponse struct {
	Kind      string     `json:"kind"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Live      bool       `json:"live"`
}

// LanguageRequest payload for PUT /api/session/language.
type LanguageRequest struct {
	Language string `json:"language"`
}

// Validate checks the payload shape. Tag syntax is checked by the service.
func (r LanguageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Language, validation.Required, validation.Length(2, 35)),
	)
}

// LanguageResponse reports the language preference.
type LanguageResponse struct {
	Language string `json:"language"`
}

// SignOutResponse confirms a sign-out.
type SignOutResponse struct {
	SignedOut bool   `json:"signed_out"`
	Redirect  string `json:"redirect"`
}
