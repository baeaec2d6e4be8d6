package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/spec-kit/dashboard-session/internal/auth"
	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/events"
	"github.com/spec-kit/dashboard-session/internal/identity"
	"github.com/spec-kit/dashboard-session/internal/store"
	apperrors "github.com/spec-kit/dashboard-session/pkg/util/errorutil"
)

// DefaultLanguage is reported when no preference is stored.
const DefaultLanguage = "en"

// CredentialStatus describes the credential that would be presented now.
// The token itself is never exposed.
type CredentialStatus struct {
	Kind      domain.CredentialKind
	ExpiresAt time.Time
	Live      bool
}

// SessionService reads and clears the locally held session.
type SessionService struct {
	store      store.Store
	selector   *auth.Selector
	normalizer *identity.Normalizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SessionDependencies bundles collaborators.
type SessionDependencies struct {
	Store      store.Store
	Selector   *auth.Selector
	Normalizer *identity.Normalizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewSessionService creates the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		store:      deps.Store,
		selector:   deps.Selector,
		normalizer: deps.Normalizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// State returns the local session belief. Store failures read as absent keys.
func (s *SessionService) State(ctx context.Context) domain.SessionState {
	return store.LoadSessionState(ctx, s.store)
}

// Credential reports which credential the next outbound call would carry.
func (s *SessionService) Credential(ctx context.Context) (CredentialStatus, error) {
	cred := s.selector.Current(ctx)
	if cred == nil {
		return CredentialStatus{}, apperrors.NewNotFound("credential", nil)
	}
	live := true
	if cred.Kind == domain.CredentialAccess {
		live = cred.IsLive(s.now())
	}
	return CredentialStatus{Kind: cred.Kind, ExpiresAt: cred.ExpiresAt, Live: live}, nil
}

// Identity normalizes the stored account record. An unreadable record still
// yields a best-effort identity.
func (s *SessionService) Identity(ctx context.Context) (domain.Identity, error) {
	raw, ok := store.Lookup(ctx, s.store, domain.KeyRawAccountRecord)
	if !ok {
		return domain.Identity{}, apperrors.NewNotFound("account record", nil)
	}

	record, err := domain.ParseAccountRecord([]byte(raw))
	if err != nil {
		s.logger.Warn("stored account record unreadable",
			zap.Error(fmt.Errorf("%w: %v", domain.ErrMalformedAccountRecord, err)))
		record = domain.RawAccountRecord{}
	}
	return s.normalizer.NormalizeAndPublish(ctx, record), nil
}

// SignOut clears credentials, proof, account id and the account record. The
// language preference is kept.
func (s *SessionService) SignOut(ctx context.Context, reason string) error {
	if err := s.store.Delete(ctx, domain.SessionKeys...); err != nil {
		return apperrors.NewServiceUnavailable("session store unavailable", err)
	}

	s.logger.Info("signed out", zap.String("reason", reason))
	if s.dispatcher != nil {
		evt := events.NewEvent(events.EventSignedOut, "", events.SignedOutPayload{
			Reason: reason,
			Keys:   append([]string(nil), domain.SessionKeys...),
		})
		if err := s.dispatcher.Publish(ctx, evt); err != nil {
			s.logger.Warn("sign-out listeners failed", zap.Error(err))
		}
	}
	return nil
}

// Language returns the stored language preference or DefaultLanguage.
func (s *SessionService) Language(ctx context.Context) string {
	if v, ok := store.Lookup(ctx, s.store, domain.KeyLanguagePreference); ok {
		return v
	}
	return DefaultLanguage
}

// SetLanguage stores a BCP 47 language preference in canonical form.
func (s *SessionService) SetLanguage(ctx context.Context, lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", apperrors.NewValidationError("language is required", nil)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "", apperrors.NewValidationError("invalid language tag", map[string]any{"language": lang})
	}

	canonical := tag.String()
	if err := s.store.Set(ctx, domain.KeyLanguagePreference, canonical); err != nil {
		return "", apperrors.NewServiceUnavailable("session store unavailable", err)
	}
	return canonical, nil
}
