package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(nil)

	_, err := s.Get(ctx, domain.KeyAccountID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, domain.KeyAccountID, "acct-1"))
	v, err := s.Get(ctx, domain.KeyAccountID)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", v)

	require.NoError(t, s.Delete(ctx, domain.KeyAccountID, "missing"))
	_, err = s.Get(ctx, domain.KeyAccountID)
	assert.True(t, IsNotFound(err))
}

func TestMemory_SeedIsCopied(t *testing.T) {
	seed := map[string]string{"a": "1"}
	s := NewMemory(seed)
	seed["a"] = "2"

	v, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory(nil).Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Set(context.Context, string, string) error { return f.err }
func (f failingStore) Delete(context.Context, ...string) error { return f.err }

func TestLookup_TreatsFailureAsAbsent(t *testing.T) {
	ctx := context.Background()

	v, ok := Lookup(ctx, failingStore{err: errors.New("disk on fire")}, domain.KeyAccessCredential)
	assert.False(t, ok)
	assert.Empty(t, v)

	v, ok = Lookup(ctx, nil, domain.KeyAccessCredential)
	assert.False(t, ok)
	assert.Empty(t, v)

	v, ok = Lookup(ctx, NewMemory(map[string]string{domain.KeyAccessCredential: ""}), domain.KeyAccessCredential)
	assert.False(t, ok, "empty value counts as absent")
	assert.Empty(t, v)
}

func TestLoadSessionState(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(map[string]string{
		domain.KeyAccessCredential: "tok",
		domain.KeyProofOfIdentity:  "proof",
	})

	state := LoadSessionState(ctx, s)
	assert.Equal(t, "tok", state.AccessToken)
	assert.Equal(t, "proof", state.Proof)
	assert.Empty(t, state.AccountID)
	assert.False(t, state.IsLocallyComplete())

	state = LoadSessionState(ctx, failingStore{err: errors.New("boom")})
	assert.Equal(t, domain.SessionState{}, state)
}
