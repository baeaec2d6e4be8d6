package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/observability"
	"github.com/spec-kit/dashboard-session/internal/store"
)

// Select picks the credential to attach to an outbound call: a live access
// credential first, otherwise any session credential, otherwise nil.
// Session credentials are not checked for expiry.
func Select(access, session *domain.Credential, now time.Time) *domain.Credential {
	if access.IsLive(now) {
		return access
	}
	if session != nil && session.Token != "" {
		return session
	}
	return nil
}

// CredentialSource yields the credential for the next outbound call, or nil.
type CredentialSource interface {
	Current(ctx context.Context) *domain.Credential
}

// Selector reads both credentials from the store and applies Select.
type Selector struct {
	store   store.Store
	decoder *CredentialDecoder
	now     func() time.Time
	logger  *zap.Logger
	metrics *observability.Metrics
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithClock overrides the evaluation clock.
func WithClock(now func() time.Time) SelectorOption {
	return func(s *Selector) { s.now = now }
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(logger *zap.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSelectorMetrics records which credential kind was chosen.
func WithSelectorMetrics(m *observability.Metrics) SelectorOption {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector builds a Selector over the given store.
func NewSelector(s store.Store, decoder *CredentialDecoder, opts ...SelectorOption) *Selector {
	sel := &Selector{
		store:   s,
		decoder: decoder,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(sel)
	}
	return sel
}

// Current returns the credential to present right now, or nil.
func (s *Selector) Current(ctx context.Context) *domain.Credential {
	access := s.load(ctx, domain.CredentialAccess, domain.KeyAccessCredential)
	session := s.load(ctx, domain.CredentialSession, domain.KeySessionCredential)

	now := s.now()
	if access != nil && !access.IsLive(now) {
		s.logger.Debug("access credential not live",
			zap.Error(domain.ErrCredentialExpired),
			zap.Time("expires_at", access.ExpiresAt))
	}

	chosen := Select(access, session, now)
	if chosen == nil {
		s.metrics.RecordCredentialSelection("")
	} else {
		s.metrics.RecordCredentialSelection(string(chosen.Kind))
	}
	return chosen
}

func (s *Selector) load(ctx context.Context, kind domain.CredentialKind, key string) *domain.Credential {
	raw, ok := store.Lookup(ctx, s.store, key)
	if !ok {
		return nil
	}

	cred, err := s.decoder.Decode(kind, raw)
	if err == nil {
		return cred
	}

	s.logger.Debug("stored credential not decodable", zap.String("kind", string(kind)), zap.Error(err))
	if kind == domain.CredentialSession && errors.Is(err, domain.ErrCredentialMalformed) {
		// Session credential liveness belongs to the store, so present it as-is.
		return &domain.Credential{Kind: kind, Token: raw}
	}
	return nil
}
