package auth

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/observability"
	"github.com/spec-kit/dashboard-session/internal/store"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func cred(kind domain.CredentialKind, token string, expiresAt time.Time) *domain.Credential {
	return &domain.Credential{Kind: kind, Token: token, ExpiresAt: expiresAt}
}

func TestSelect(t *testing.T) {
	live := cred(domain.CredentialAccess, "access", now.Add(time.Minute))
	expired := cred(domain.CredentialAccess, "access", now.Add(-10*time.Minute))
	atNow := cred(domain.CredentialAccess, "access", now)
	session := cred(domain.CredentialSession, "session", now.Add(-time.Hour))

	tests := []struct {
		name    string
		access  *domain.Credential
		session *domain.Credential
		want    *domain.Credential
	}{
		{"live access wins over session", live, session, live},
		{"live access alone", live, nil, live},
		{"expired access falls back to session", expired, session, session},
		{"expiry equal to now is not live", atNow, session, session},
		{"no access uses session", nil, session, session},
		{"expired access and no session", expired, nil, nil},
		{"nothing", nil, nil, nil},
		{"empty session token ignored", nil, cred(domain.CredentialSession, "", time.Time{}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, Select(tt.access, tt.session, now))
		})
	}
}

func TestSelect_AccessDependsOnlyOnItsExpiry(t *testing.T) {
	access := cred(domain.CredentialAccess, "access", now.Add(time.Second))
	for _, session := range []*domain.Credential{
		nil,
		cred(domain.CredentialSession, "s", time.Time{}),
		cred(domain.CredentialSession, "s", now.Add(time.Hour)),
	} {
		assert.Same(t, access, Select(access, session, now))
	}
}

func newSelector(t *testing.T, seed map[string]string, opts ...SelectorOption) *Selector {
	t.Helper()
	opts = append([]SelectorOption{WithClock(func() time.Time { return now })}, opts...)
	return NewSelector(store.NewMemory(seed), NewCredentialDecoder(testSecret), opts...)
}

func TestSelector_Current(t *testing.T) {
	liveExp := now.Add(time.Hour)
	expiredExp := now.Add(-10 * time.Minute)
	liveAccess := signToken(t, testSecret, &liveExp)
	expiredAccess := signToken(t, testSecret, &expiredExp)
	session := signToken(t, testSecret, &expiredExp)

	t.Run("live access", func(t *testing.T) {
		sel := newSelector(t, map[string]string{
			domain.KeyAccessCredential:  liveAccess,
			domain.KeySessionCredential: session,
		})
		got := sel.Current(context.Background())
		require.NotNil(t, got)
		assert.Equal(t, domain.CredentialAccess, got.Kind)
		assert.Equal(t, liveAccess, got.Token)
	})

	t.Run("expired access falls back to session", func(t *testing.T) {
		sel := newSelector(t, map[string]string{
			domain.KeyAccessCredential:  expiredAccess,
			domain.KeySessionCredential: session,
		})
		got := sel.Current(context.Background())
		require.NotNil(t, got)
		assert.Equal(t, domain.CredentialSession, got.Kind)
	})

	t.Run("undecodable access is not live", func(t *testing.T) {
		sel := newSelector(t, map[string]string{
			domain.KeyAccessCredential:  "garbage",
			domain.KeySessionCredential: session,
		})
		got := sel.Current(context.Background())
		require.NotNil(t, got)
		assert.Equal(t, domain.CredentialSession, got.Kind)
	})

	t.Run("undecodable session is still presented", func(t *testing.T) {
		sel := newSelector(t, map[string]string{domain.KeySessionCredential: "opaque-session"})
		got := sel.Current(context.Background())
		require.NotNil(t, got)
		assert.Equal(t, "opaque-session", got.Token)
		assert.True(t, got.ExpiresAt.IsZero())
	})

	t.Run("empty store", func(t *testing.T) {
		assert.Nil(t, newSelector(t, nil).Current(context.Background()))
	})
}

func TestSelector_RecordsKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	sel := newSelector(t, map[string]string{domain.KeySessionCredential: "s"},
		WithSelectorMetrics(observability.NewMetrics(reg)))

	sel.Current(context.Background())
	sel.Current(context.Background())

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "dashboard_credential_selections_total"))
}
