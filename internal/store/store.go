// Package store holds the key-value store credentials, the proof of identity
// and the raw account record are read from.
package store

import (
	"context"
	"errors"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = domain.ErrNotFound

// Store is the abstract key-value store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Lookup reads key and treats every failure as absent. Callers deciding
// session state must never see a store error.
func Lookup(ctx context.Context, s Store, key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, err := s.Get(ctx, key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// IsNotFound reports whether err is a missing-key error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// LoadSessionState assembles the local session belief from the store.
func LoadSessionState(ctx context.Context, s Store) domain.SessionState {
	access, _ := Lookup(ctx, s, domain.KeyAccessCredential)
	proof, _ := Lookup(ctx, s, domain.KeyProofOfIdentity)
	accountID, _ := Lookup(ctx, s, domain.KeyAccountID)
	return domain.SessionState{
		AccessToken: access,
		Proof:       proof,
		AccountID:   accountID,
	}
}
