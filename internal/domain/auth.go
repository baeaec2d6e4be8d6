package domain

import "time"

// CredentialKind differentiates the primary access credential from the
// restricted session credential.
type CredentialKind string

const (
	CredentialAccess  CredentialKind = "ACCESS"
	CredentialSession CredentialKind = "SESSION"
)

// Credential is a bearer token together with the expiry encoded in its own claims.
// Credentials are replaced wholesale, never mutated.
type Credential struct {
	Kind      CredentialKind
	Token     string
	ExpiresAt time.Time
}

// IsLive reports whether the expiry instant is strictly after now.
func (c *Credential) IsLive(now time.Time) bool {
	if c == nil || c.Token == "" {
		return false
	}
	return c.ExpiresAt.After(now)
}

// SessionState is the locally held belief about whether the actor is signed in.
type SessionState struct {
	AccessToken string
	Proof       string
	AccountID   string
}

// IsLocallyComplete reports whether credential, proof and account id are all present.
func (s SessionState) IsLocallyComplete() bool {
	return len(s.Missing()) == 0
}

// Missing lists the store keys absent from the state, in a stable order.
func (s SessionState) Missing() []string {
	missing := make([]string, 0, 3)
	if s.AccessToken == "" {
		missing = append(missing, KeyAccessCredential)
	}
	if s.Proof == "" {
		missing = append(missing, KeyProofOfIdentity)
	}
	if s.AccountID == "" {
		missing = append(missing, KeyAccountID)
	}
	return missing
}
