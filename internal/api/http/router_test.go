package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/api/http/handlers"
	"github.com/spec-kit/dashboard-session/internal/auth"
	"github.com/spec-kit/dashboard-session/internal/authority"
	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/events"
	"github.com/spec-kit/dashboard-session/internal/guard"
	"github.com/spec-kit/dashboard-session/internal/identity"
	"github.com/spec-kit/dashboard-session/internal/observability"
	"github.com/spec-kit/dashboard-session/internal/service"
	"github.com/spec-kit/dashboard-session/internal/store"
	"github.com/spec-kit/dashboard-session/internal/worker"
)

const ownerRecord = `{"id":"rec-1","ipfs_pin_hash":"bafy","date_pinned":"2024-01-02T03:04:05Z",
"metadata":{"name":"","keyvalues":{"accountEmail":"jane.doe@co.com","accountSubscriptionId":"premium","accountId":"acct-1"}}}`

type harness struct {
	app          *fiber.App
	store        *store.Memory
	remoteCalls  *atomic.Int32
	authenticate *atomic.Bool
	status       *atomic.Int32
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func newHarness(t *testing.T, seed map[string]string) *harness {
	t.Helper()
	h := &harness{
		store:        store.NewMemory(seed),
		remoteCalls:  new(atomic.Int32),
		authenticate: new(atomic.Bool),
		status:       new(atomic.Int32),
	}
	h.status.Store(http.StatusOK)

	authoritySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.remoteCalls.Add(1)
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(int(h.status.Load()))
		_ = json.NewEncoder(w).Encode(map[string]bool{"authenticated": h.authenticate.Load()})
	}))
	t.Cleanup(authoritySrv.Close)

	logger := zap.NewNop()
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	dispatcher := events.NewInMemoryDispatcher(logger)

	selector := auth.NewSelector(h.store, auth.NewCredentialDecoder("secret"), auth.WithSelectorMetrics(metrics))
	normalizer := identity.MustNewNormalizer(identity.WithMetrics(metrics))
	client := authority.NewClient(authority.Options{
		HTTPClient: &http.Client{Transport: &auth.BearerTransport{Credentials: selector, Dispatcher: dispatcher}},
		StatusURL:  authoritySrv.URL + "/auth/status",
		Timeout:    time.Second,
	})
	sessionGuard := guard.New(client, guard.WithSignInPath("/sign-in"), guard.WithMetrics(metrics))
	sessions := service.NewSessionService(service.SessionDependencies{
		Store:      h.store,
		Selector:   selector,
		Normalizer: normalizer,
		Dispatcher: dispatcher,
	})
	worker.StartSessionWorker(service.NewSessionListener(dispatcher, sessions, logger))

	routeGuard := auth.NewRouteGuard(sessionGuard, func(c *fiber.Ctx) domain.SessionState {
		return sessions.State(c.UserContext())
	}, logger)

	h.app = fiber.New()
	RegisterMiddlewares(h.app, logger, metrics, 5*time.Second)
	RegisterRoutes(h.app, RouteConfig{
		Health:      handlers.NewHealthHandler("dashboard-session", "test", "memory", h.store),
		Session:     handlers.NewSessionHandler(sessions, "/sign-in"),
		Dashboard:   handlers.NewDashboardHandler(),
		RouteGuard:  routeGuard,
		Identities:  sessions,
		Gatherer:    registry,
		SignOutPath: "/sign-out",
	})
	return h
}

func signedInSeed(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		domain.KeyAccessCredential: signed(t, time.Now().Add(time.Hour)),
		domain.KeyProofOfIdentity:  "proof",
		domain.KeyAccountID:        "acct-1",
		domain.KeyRawAccountRecord: ownerRecord,
	}
}

func (h *harness) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.app.Test(req, 5000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestDashboard_IncompleteStateRedirectsWithoutRemoteCall(t *testing.T) {
	seed := signedInSeed(t)
	delete(seed, domain.KeyAccountID)
	h := newHarness(t, seed)

	resp, _ := h.do(t, http.MethodGet, "/dashboard", "")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in?redirectURL=/dashboard", resp.Header.Get("Location"))
	assert.Equal(t, int32(0), h.remoteCalls.Load())
}

func TestSignOutPage_IncompleteStateHasNoReturnTo(t *testing.T) {
	h := newHarness(t, nil)

	resp, _ := h.do(t, http.MethodGet, "/sign-out", "")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))
	assert.Equal(t, int32(0), h.remoteCalls.Load())
}

func TestSignOutPage_ClearsSession(t *testing.T) {
	h := newHarness(t, signedInSeed(t))
	h.authenticate.Store(true)

	resp, _ := h.do(t, http.MethodGet, "/sign-out", "")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))
	_, err := h.store.Get(context.Background(), domain.KeyAccessCredential)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDashboard_AllowedWhenAuthorityAccepts(t *testing.T) {
	h := newHarness(t, signedInSeed(t))
	h.authenticate.Store(true)

	resp, body := h.do(t, http.MethodGet, "/dashboard/orders", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "/dashboard/orders", data["path"])
	id := data["identity"].(map[string]any)
	assert.Equal(t, "Jane Doe", id["name"])
	assert.Equal(t, int32(1), h.remoteCalls.Load())
}

func TestDashboard_RejectedByAuthority(t *testing.T) {
	h := newHarness(t, signedInSeed(t))
	h.authenticate.Store(false)

	resp, _ := h.do(t, http.MethodGet, "/dashboard/orders", "")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in?redirectURL=/dashboard/orders", resp.Header.Get("Location"))
}

func TestDashboard_AuthorityErrorFailsClosed(t *testing.T) {
	h := newHarness(t, signedInSeed(t))
	h.authenticate.Store(true)
	h.status.Store(http.StatusInternalServerError)

	resp, _ := h.do(t, http.MethodGet, "/dashboard", "")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in?redirectURL=/dashboard", resp.Header.Get("Location"))
}

func TestDashboard_UnauthorizedResponseSignsOut(t *testing.T) {
	seed := signedInSeed(t)
	seed[domain.KeyAccessCredential] = signed(t, time.Now().Add(-10*time.Minute))
	h := newHarness(t, seed)

	// Expired access and no session credential: the call goes out bare, the
	// authority answers 401 and the listener clears the session.
	resp, _ := h.do(t, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	_, state := h.do(t, http.MethodGet, "/api/session/state", "")
	data := state["data"].(map[string]any)
	assert.Equal(t, false, data["locally_complete"])
	assert.ElementsMatch(t, []any{"access_token", "proof_of_identity", "account_id"}, data["missing"])
}

func TestDashboard_BillingRequiresPremiumOwner(t *testing.T) {
	h := newHarness(t, signedInSeed(t))
	h.authenticate.Store(true)

	resp, _ := h.do(t, http.MethodGet, "/dashboard/billing", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionAPI(t *testing.T) {
	h := newHarness(t, signedInSeed(t))

	resp, body := h.do(t, http.MethodGet, "/api/session/credential", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cred := body["data"].(map[string]any)
	assert.Equal(t, "ACCESS", cred["kind"])
	assert.Equal(t, true, cred["live"])
	assert.NotContains(t, cred, "token")

	resp, body = h.do(t, http.MethodGet, "/api/session/identity", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := body["data"].(map[string]any)
	assert.Equal(t, "jane.doe@co.com", id["email"])
	assert.Equal(t, true, id["is_premium_or_higher"])
	assert.Equal(t, "Active", id["status"])

	resp, body = h.do(t, http.MethodPut, "/api/session/language", `{"language":"pt-br"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pt-BR", body["data"].(map[string]any)["language"])

	resp, body = h.do(t, http.MethodPut, "/api/session/language", `{"language":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])

	resp, body = h.do(t, http.MethodPost, "/api/session/sign-out", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/sign-in", body["data"].(map[string]any)["redirect"])

	resp, body = h.do(t, http.MethodGet, "/api/session/identity", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])

	_, body = h.do(t, http.MethodGet, "/api/session/language", "")
	assert.Equal(t, "pt-BR", body["data"].(map[string]any)["language"])
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, nil)

	resp, body := h.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = h.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	h.do(t, http.MethodGet, "/dashboard", "")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "dashboard_guard_decisions_total")
	assert.Contains(t, string(raw), "dashboard_http_requests_total")
}

func TestUnknownRouteRendersError(t *testing.T) {
	h := newHarness(t, nil)

	resp, body := h.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestRequestIDPropagated(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(observability.RequestIDHeader, "req-123")
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(observability.RequestIDHeader))

	resp, err = h.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(observability.RequestIDHeader))
}
