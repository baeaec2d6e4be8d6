package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

// CredentialDecoder turns stored bearer tokens into credentials carrying the
// expiry from their own claims.
type CredentialDecoder struct {
	secret  []byte
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// DecoderOption customizes a CredentialDecoder.
type DecoderOption func(*CredentialDecoder)

// WithKeyfunc verifies signatures with kf, typically backed by a JWK set.
// It takes precedence over the shared secret.
func WithKeyfunc(kf jwt.Keyfunc) DecoderOption {
	return func(d *CredentialDecoder) {
		d.keyfunc = kf
	}
}

// NewCredentialDecoder builds a decoder. With an empty secret and no keyfunc
// signatures are not verified and only the claims are read.
func NewCredentialDecoder(secret string, opts ...DecoderOption) *CredentialDecoder {
	d := &CredentialDecoder{
		// Expiry is decided by the selector, not at parse time.
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
	if secret != "" {
		d.secret = []byte(secret)
		d.keyfunc = d.hmacKey
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses raw and returns a credential of the given kind. A token without
// an exp claim decodes with a zero expiry.
func (d *CredentialDecoder) Decode(kind domain.CredentialKind, raw string) (*domain.Credential, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrCredentialMalformed)
	}

	claims := &jwt.RegisteredClaims{}
	var err error
	if d.keyfunc != nil {
		_, err = d.parser.ParseWithClaims(raw, claims, d.keyfunc)
	} else {
		_, _, err = d.parser.ParseUnverified(raw, claims)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialMalformed, err)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &domain.Credential{Kind: kind, Token: raw, ExpiresAt: expiresAt}, nil
}

func (d *CredentialDecoder) hmacKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return d.secret, nil
}
